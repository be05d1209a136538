package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codeready-toolchain/dataq/pkg/prompt"
)

// ErrMalformedOutput indicates the model's response could not be parsed
// as the JSON shape a prompt template requires, even after one retry.
var ErrMalformedOutput = fmt.Errorf("llm returned malformed output")

// Adapter wraps a Client with the typed, JSON-structured operations the
// workflow engine calls. Every operation sends its prompt, tries to
// parse the response, and on a parse failure reprompts once with a
// JSON-only instruction and the previous response appended before
// giving up.
type Adapter struct {
	client Client
	model  string
	budget *Budget
}

// NewAdapter builds an Adapter around client, spending from budget.
func NewAdapter(client Client, model string, budget *Budget) *Adapter {
	return &Adapter{client: client, model: model, budget: budget}
}

// SafetyVerdict is the parsed result of ClassifySafety. FilteredTask is
// set only on "accept" (a sanitized restatement of the task that never
// adds mutating intent beyond what the user wrote); RejectionReason is
// set only on "reject".
type SafetyVerdict struct {
	Verdict         string `json:"verdict"`
	FilteredTask    string `json:"filtered_task"`
	RejectionReason string `json:"rejection_reason"`
}

// ClassifySafety runs the task-safety-filter template.
func (a *Adapter) ClassifySafety(ctx context.Context, sessionID string, in prompt.SafetyFilterInput) (*SafetyVerdict, error) {
	var out SafetyVerdict
	if err := a.callJSON(ctx, sessionID, prompt.RenderTaskSafetyFilter(in), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// QueryCandidate is one generated candidate query.
type QueryCandidate struct {
	SQL     string `json:"sql"`
	Purpose string `json:"purpose"`
}

// SQLGenResult is the parsed result of SynthesizeQueries.
type SQLGenResult struct {
	Queries []QueryCandidate `json:"queries"`
	Notes   string           `json:"notes"`
}

// SynthesizeQueries runs the intent-analysis-and-sql template.
func (a *Adapter) SynthesizeQueries(ctx context.Context, sessionID string, in prompt.SQLGenInput) (*SQLGenResult, error) {
	var out SQLGenResult
	if err := a.callJSON(ctx, sessionID, prompt.RenderIntentAnalysisAndSQL(in), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RepairResult is the parsed result of RepairQuery.
type RepairResult struct {
	SQL   string `json:"sql"`
	Notes string `json:"notes"`
}

// RepairQuery runs the error-analysis-and-repair template.
func (a *Adapter) RepairQuery(ctx context.Context, sessionID string, in prompt.RepairInput) (*RepairResult, error) {
	var out RepairResult
	if err := a.callJSON(ctx, sessionID, prompt.RenderErrorAnalysisAndRepair(in), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ComposeReport runs the analysis-report template and returns the raw
// text report (not JSON — the report is prose, not structured data).
func (a *Adapter) ComposeReport(ctx context.Context, sessionID string, in prompt.ReportInput) (string, error) {
	return a.callText(ctx, sessionID, prompt.RenderAnalysisReport(in))
}

func (a *Adapter) callText(ctx context.Context, sessionID string, messages []prompt.Message) (string, error) {
	input := &GenerateInput{
		SessionID: sessionID,
		Model:     a.model,
		Messages:  toConversation(messages),
	}
	if err := a.budget.Reserve(estimateTokens(input)); err != nil {
		return "", err
	}

	ch, err := a.client.Generate(ctx, input)
	if err != nil {
		return "", err
	}
	text, usage, err := Collect(ch)
	a.budget.Spend(usage.TotalTokens)
	if err != nil {
		return "", err
	}
	return text, nil
}

// callJSON sends messages, parses the response into out, and on a parse
// failure reprompts once with a JSON-only instruction and the previous
// response appended to the conversation before giving up with
// ErrMalformedOutput.
func (a *Adapter) callJSON(ctx context.Context, sessionID string, messages []prompt.Message, out any) error {
	text, err := a.callText(ctx, sessionID, messages)
	if err != nil {
		return err
	}

	if parseErr := json.Unmarshal([]byte(prompt.StripCodeFences(text)), out); parseErr == nil {
		return nil
	}

	retryMessages := append(append([]prompt.Message{}, messages...), prompt.Message{
		Role:    "user",
		Content: fmt.Sprintf("Your previous response was not valid JSON matching the required shape. Respond again with ONLY the JSON object, nothing else. Previous response:\n%s", text),
	})

	text, err = a.callText(ctx, sessionID, retryMessages)
	if err != nil {
		return err
	}
	if parseErr := json.Unmarshal([]byte(prompt.StripCodeFences(text)), out); parseErr != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, parseErr)
	}
	return nil
}

func toConversation(messages []prompt.Message) []ConversationMessage {
	out := make([]ConversationMessage, len(messages))
	for i, m := range messages {
		out[i] = ConversationMessage{Role: m.Role, Content: m.Content}
	}
	return out
}

// estimateTokens is a crude, deliberately conservative pre-call estimate
// (roughly 4 characters per token) used only to fail fast against the
// budget before paying for a network round trip; Spend() after the call
// records the provider's actual usage.
func estimateTokens(input *GenerateInput) int {
	chars := 0
	for _, m := range input.Messages {
		chars += len(m.Content)
	}
	return chars/4 + 256
}
