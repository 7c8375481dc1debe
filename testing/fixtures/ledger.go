package fixtures

import (
	"context"
	"fmt"
	"sync"
)

// Ledger is an in-memory contract answering calls from canned tuples.
type Ledger struct {
	mu     sync.Mutex
	tuples map[string][]any
	errs   map[string]error
	calls  int
}

func NewLedger() *Ledger {
	return &Ledger{tuples: map[string][]any{}, errs: map[string]error{}}
}

func key(method string, args []any) string {
	return fmt.Sprint(method, args)
}

// Set makes method(args...) return tuple.
func (l *Ledger) Set(tuple []any, method string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tuples[key(method, args)] = tuple
}

// Fail makes method(args...) return err.
func (l *Ledger) Fail(err error, method string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs[key(method, args)] = err
}

func (l *Ledger) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// Call returns the canned tuple, or an empty tuple when nothing was set.
func (l *Ledger) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	k := key(method, args)
	if err, ok := l.errs[k]; ok {
		return nil, err
	}
	return l.tuples[k], nil
}
