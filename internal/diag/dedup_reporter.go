package diag

import (
	"sync"

	"semgraph/internal/source"
)

type fingerprint struct {
	code    Code
	sev     Severity
	primary source.Span
	msg     string
}

// DedupReporter forwards each distinct diagnostic once. Two reports are the
// same when code, severity, primary span and message match. Safe for
// concurrent use; next is only called under the lock.
type DedupReporter struct {
	mu         sync.Mutex
	next       Reporter
	seen       map[fingerprint]struct{}
	suppressed int
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[fingerprint]struct{})}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r == nil {
		return
	}
	fp := fingerprint{code: code, sev: sev, primary: primary, msg: msg}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.seen[fp]; dup {
		r.suppressed++
		return
	}
	r.seen[fp] = struct{}{}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes)
	}
}

// Suppressed counts the duplicates dropped so far.
func (r *DedupReporter) Suppressed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.suppressed
}
