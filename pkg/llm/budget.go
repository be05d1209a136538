package llm

import (
	"errors"
	"sync"
)

// ErrBudgetExhausted indicates a session's token allowance has been spent.
var ErrBudgetExhausted = errors.New("token budget exhausted")

// Budget tracks cumulative token spend for one session against a fixed
// allowance. It is safe for concurrent use; the workflow engine itself
// is single-threaded per session, but the API layer may inspect the
// budget from a different goroutine while a session streams.
type Budget struct {
	mu      sync.Mutex
	limit   int
	spent   int
}

// NewBudget creates a Budget with the given total token allowance.
func NewBudget(limit int) *Budget {
	return &Budget{limit: limit}
}

// Reserve checks that estimatedTokens still fits within the remaining
// allowance without yet committing the spend; callers that go on to
// make the call should follow up with Spend using the actual usage.
func (b *Budget) Reserve(estimatedTokens int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.spent+estimatedTokens > b.limit {
		return ErrBudgetExhausted
	}
	return nil
}

// Spend records actual token usage, regardless of what was reserved.
func (b *Budget) Spend(tokens int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.spent += tokens
}

// Remaining returns the number of tokens left in the budget.
func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	remaining := b.limit - b.spent
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Spent returns the cumulative tokens spent so far.
func (b *Budget) Spent() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.spent
}
