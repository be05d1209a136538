package memory

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Summarize produces a compact statistical description of a result set
// too large to keep inline in workflow state: descriptive statistics
// (min/max/mean) for numeric columns and the top-K most frequent values
// for everything else.
func Summarize(columns []string, rows [][]any, topK int) string {
	if len(rows) == 0 {
		return "no rows"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d rows across %d columns\n", len(rows), len(columns))

	for i, col := range columns {
		values := columnValues(rows, i)
		if nums, ok := asFloats(values); ok {
			min, max, mean := describeNumeric(nums)
			fmt.Fprintf(&b, "- %s: numeric, min=%.2f max=%.2f mean=%.2f\n", col, min, max, mean)
			continue
		}
		top := topValues(values, topK)
		fmt.Fprintf(&b, "- %s: top values %s\n", col, strings.Join(top, ", "))
	}

	return b.String()
}

func columnValues(rows [][]any, col int) []any {
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		if col < len(row) {
			out = append(out, row[col])
		}
	}
	return out
}

func asFloats(values []any) ([]float64, bool) {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		f, ok := toFloat(v)
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, len(out) > 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func describeNumeric(values []float64) (min, max, mean float64) {
	min, max = math.Inf(1), math.Inf(-1)
	var sum float64
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	return min, max, sum / float64(len(values))
}

func topValues(values []any, topK int) []string {
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[fmt.Sprintf("%v", v)]++
	}

	type kv struct {
		key   string
		count int
	}
	ordered := make([]kv, 0, len(counts))
	for k, c := range counts {
		ordered = append(ordered, kv{k, c})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		return ordered[i].key < ordered[j].key
	})

	if topK > len(ordered) {
		topK = len(ordered)
	}
	out := make([]string, topK)
	for i := 0; i < topK; i++ {
		out[i] = fmt.Sprintf("%s (%d)", ordered[i].key, ordered[i].count)
	}
	return out
}
