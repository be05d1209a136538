package warehouse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"vitess.io/vitess/go/vt/sqlparser"
)

// mutating matches keywords that have no business appearing in a
// read-only analysis query. It runs as a second, independent pass after
// the AST parse so a parser bug in one layer doesn't become an
// authorization bypass.
var mutating = regexp.MustCompile(`(?is)\b(INSERT|UPDATE|DELETE|UPSERT|MERGE|ALTER|DROP|TRUNCATE|VACUUM|REINDEX|GRANT|REVOKE|CREATE|COPY|ROLLBACK|COMMIT|BEGIN|START|SAVEPOINT|RELEASE|SET)\b`)

var globalParser, globalParserErr = sqlparser.New(sqlparser.Options{})

// CheckReadOnly parses sql with the vitess AST parser and rejects
// anything but a single SELECT/WITH statement, then runs the keyword
// blocklist as defense-in-depth against AST-parser gaps.
func CheckReadOnly(sql string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return fmt.Errorf("%w: empty statement", ErrUnsafeSQL)
	}

	if strings.Count(trimmed, ";") > 1 ||
		(strings.Count(trimmed, ";") == 1 && !strings.HasSuffix(trimmed, ";")) {
		return fmt.Errorf("%w: multiple statements not allowed", ErrUnsafeSQL)
	}

	if globalParserErr == nil {
		stmt, err := globalParser.Parse(strings.TrimSuffix(trimmed, ";"))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnsafeSQL, err)
		}
		switch stmt.(type) {
		case *sqlparser.Select, *sqlparser.Union, *sqlparser.With:
			// allowed
		default:
			return fmt.Errorf("%w: only SELECT/WITH statements are allowed", ErrUnsafeSQL)
		}
	}

	if mutating.MatchString(trimmed) {
		return fmt.Errorf("%w: mutating keyword detected", ErrUnsafeSQL)
	}

	return nil
}

var limitClause = regexp.MustCompile(`(?is)\bLIMIT\s+(\d+)(?:\s+OFFSET\s+\d+)?\s*;?\s*$`)

// withLimit wraps sql in a CTE and applies limit unless the statement
// already carries its own LIMIT clause.
func withLimit(sql string, limit int) string {
	if limitClause.MatchString(sql) {
		return sql
	}
	return fmt.Sprintf("WITH q AS (%s) SELECT * FROM q LIMIT %d", sql, limit)
}

// existingLimit reports the numeric value of sql's own top-level LIMIT
// clause, if any.
func existingLimit(sql string) (int, bool) {
	m := limitClause.FindStringSubmatch(sql)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
