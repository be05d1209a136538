package driver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/codeready-toolchain/dataq/pkg/workflow"
)

// TerminalInput implements workflow.InputProvider by reading from an
// io.Reader (typically os.Stdin) and writing prompts to an io.Writer,
// for a synchronous CLI session.
type TerminalInput struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewTerminalInput builds a TerminalInput reading from in and prompting
// on out.
func NewTerminalInput(in io.Reader, out io.Writer) *TerminalInput {
	return &TerminalInput{scanner: bufio.NewScanner(in), out: out}
}

// SelectDataset implements workflow.InputProvider.
func (t *TerminalInput) SelectDataset(ctx context.Context, datasets []string) (int, error) {
	fmt.Fprintln(t.out, "Available datasets:")
	for i, ds := range datasets {
		fmt.Fprintf(t.out, "  [%d] %s\n", i, ds)
	}
	fmt.Fprint(t.out, "Select a dataset by number: ")

	line, err := t.readLine(ctx)
	if err != nil {
		return -1, err
	}
	idx, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return -1, nil // out of range triggers the re-ask edge, not an error
	}
	return idx, nil
}

// GetTask implements workflow.InputProvider.
func (t *TerminalInput) GetTask(ctx context.Context) (string, error) {
	fmt.Fprint(t.out, "Describe the analysis you want: ")
	return t.readLine(ctx)
}

func (t *TerminalInput) readLine(ctx context.Context) (string, error) {
	lineCh := make(chan string, 1)
	errCh := make(chan error, 1)

	go func() {
		if t.scanner.Scan() {
			lineCh <- t.scanner.Text()
			return
		}
		if err := t.scanner.Err(); err != nil {
			errCh <- err
			return
		}
		errCh <- io.EOF
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errCh:
		return "", err
	case line := <-lineCh:
		return line, nil
	}
}

// AsyncInput implements workflow.InputProvider for a front-end that
// collects human input out of band (e.g. an HTTP POST handler) and
// hands it back over a channel. Submit feeds the next awaited answer;
// SelectDataset/GetTask block until a value is submitted or ctx ends.
// Exactly one of SelectDataset/GetTask is ever awaiting at a time,
// since the workflow machine is single-threaded per session.
type AsyncInput struct {
	prompts chan PromptRequest
	answers chan string
}

// PromptRequest describes one pending human-input request the workflow
// is blocked on.
type PromptRequest struct {
	Kind     string // "select_dataset" or "get_task"
	Datasets []string
}

// NewAsyncInput creates an AsyncInput; Prompts() surfaces the next
// pending request to the front-end, Submit() answers it.
func NewAsyncInput() *AsyncInput {
	return &AsyncInput{
		prompts: make(chan PromptRequest, 1),
		answers: make(chan string),
	}
}

// Prompts returns the channel of pending prompts for a front-end to
// consume, so it knows what kind of answer to collect from the user
// before calling Submit.
func (a *AsyncInput) Prompts() <-chan PromptRequest {
	return a.prompts
}

// Submit answers the currently pending prompt. It blocks until the
// driver's goroutine is waiting to receive it or ctx ends.
func (a *AsyncInput) Submit(ctx context.Context, answer string) error {
	select {
	case a.answers <- answer:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SelectDataset implements workflow.InputProvider.
func (a *AsyncInput) SelectDataset(ctx context.Context, datasets []string) (int, error) {
	select {
	case a.prompts <- PromptRequest{Kind: "select_dataset", Datasets: datasets}:
	case <-ctx.Done():
		return -1, ctx.Err()
	}

	select {
	case ans := <-a.answers:
		idx, err := strconv.Atoi(strings.TrimSpace(ans))
		if err != nil {
			return -1, nil
		}
		return idx, nil
	case <-ctx.Done():
		return -1, ctx.Err()
	}
}

// GetTask implements workflow.InputProvider.
func (a *AsyncInput) GetTask(ctx context.Context) (string, error) {
	select {
	case a.prompts <- PromptRequest{Kind: "get_task"}:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case ans := <-a.answers:
		return ans, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

var _ workflow.InputProvider = (*TerminalInput)(nil)
var _ workflow.InputProvider = (*AsyncInput)(nil)
