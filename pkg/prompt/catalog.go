// Package prompt holds the named, versioned prompt templates the
// workflow engine sends to the LLM adapter. Each template is a pure
// function from typed input to a system/user message pair so the
// workflow nodes never hand-assemble prompt text inline.
package prompt

// Name identifies one template in the catalog.
type Name string

const (
	// TaskSafetyFilter asks the model to classify whether a free-form
	// analysis task is answerable from the warehouse in a read-only way.
	TaskSafetyFilter Name = "task_safety_filter/v1"

	// IntentAnalysisAndSQL asks the model to turn a task plus schema
	// context into one or more candidate SQL queries.
	IntentAnalysisAndSQL Name = "intent_analysis_and_sql/v1"

	// ErrorAnalysisAndRepair asks the model to repair a query that
	// failed execution, given the error the warehouse returned.
	ErrorAnalysisAndRepair Name = "error_analysis_and_repair/v1"

	// AnalysisReport asks the model to compose the final natural
	// language report from the executed queries and their results.
	AnalysisReport Name = "analysis_report/v1"
)

// Message is one turn of a rendered prompt, ready to hand to the LLM
// adapter as a llm.ConversationMessage.
type Message struct {
	Role    string
	Content string
}
