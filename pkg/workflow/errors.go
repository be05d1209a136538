package workflow

import "fmt"

// Error taxonomy codes, surfaced in AnalysisState.ErrorCode and to the
// session driver so callers can branch on category without string
// matching against an error's message.
const (
	CodeWarehouseUnavailable = "WAREHOUSE_UNAVAILABLE"
	CodeDatasetNotFound      = "DATASET_NOT_FOUND"
	CodeTableNotFound        = "TABLE_NOT_FOUND"
	CodeUnsafeTask           = "UNSAFE_TASK"
	CodeUnsafeSQL            = "UNSAFE_SQL"
	CodeMalformedOutput      = "LLM_MALFORMED_OUTPUT"
	CodeSQLSyntax            = "SQL_SYNTAX"
	CodeSQLSemantic          = "SQL_SEMANTIC"
	CodeBudgetExhausted      = "BUDGET_EXHAUSTED"
	CodeDeadline             = "DEADLINE"
	CodeCancelled            = "CANCELLED"
	CodeInternal             = "INTERNAL"
)

// WorkflowError wraps an underlying error with the taxonomy code a node
// classified it as, letting the driver and API layer map failures to
// user-facing categories without parsing error strings.
type WorkflowError struct {
	Code string
	Node string
	Err  error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s at %s: %v", e.Code, e.Node, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// NewWorkflowError wraps err with the classifying code and the node
// that produced it.
func NewWorkflowError(code, node string, err error) *WorkflowError {
	return &WorkflowError{Code: code, Node: node, Err: err}
}
