// Package lazy provides the memoized binding cell every graph reference is
// built on.
//
// A Resolver runs its hook at most once per successful store: the first
// outcome written, success or failure, is the only one ever observed. The
// cache is keyed by the cell, not by the context passed to Get; a cell is
// expected to be queried with one context over its whole lifetime, and a
// second context simply receives the cached outcome.
package lazy

import "sync"

// State is the tri-state of a Resolver.
type State uint8

const (
	Unresolved State = iota
	Resolved
	Failed
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return "invalid"
	}
}

// Hook computes the target for a context. A non-nil error marks failure.
type Hook[C, T any] func(ctx C) (T, error)

// Resolver is a write-once, race-safe memo cell.
type Resolver[C, T any] struct {
	mu    sync.Mutex
	state State
	value T
	err   error
	hook  Hook[C, T]
	runs  int
}

// New returns an unresolved cell driven by hook.
func New[C, T any](hook Hook[C, T]) *Resolver[C, T] {
	return &Resolver[C, T]{hook: hook}
}

// Of returns a cell that is already resolved to value and never runs a hook.
func Of[C, T any](value T) *Resolver[C, T] {
	return &Resolver[C, T]{state: Resolved, value: value}
}

// Get returns the cached outcome, computing it on first use. report receives
// the failure exactly once, from the call that stored it. The hook runs
// outside the lock; when two callers race, the loser's result is discarded.
func (r *Resolver[C, T]) Get(ctx C, report func(error)) (T, bool) {
	r.mu.Lock()
	if r.state != Unresolved {
		value, ok := r.value, r.state == Resolved
		r.mu.Unlock()
		return value, ok
	}
	hook := r.hook
	r.mu.Unlock()

	var (
		value T
		err   error
	)
	if hook == nil {
		err = errNoHook
	} else {
		value, err = hook(ctx)
	}

	r.mu.Lock()
	r.runs++
	if r.state != Unresolved {
		value, ok := r.value, r.state == Resolved
		r.mu.Unlock()
		return value, ok
	}
	if err != nil {
		var zero T
		r.state, r.value, r.err = Failed, zero, err
	} else {
		r.state, r.value = Resolved, value
	}
	r.hook = nil
	r.mu.Unlock()

	if err != nil {
		if report != nil {
			report(err)
		}
		var zero T
		return zero, false
	}
	return value, true
}

// Peek returns the cached outcome without triggering resolution.
func (r *Resolver[C, T]) Peek() (T, State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value, r.state
}

// Err returns the stored failure, if any.
func (r *Resolver[C, T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Runs reports how many hook invocations finished. Used by tests to verify
// memoization.
func (r *Resolver[C, T]) Runs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

type noHookError struct{}

func (noHookError) Error() string { return "resolver has no hook" }

var errNoHook error = noHookError{}
