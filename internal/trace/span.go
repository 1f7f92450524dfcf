package trace

import (
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// newEvent stamps an event with the time and the next sequence number.
func newEvent(kind Kind, scope Scope, name string) *Event {
	return &Event{Time: time.Now(), Seq: seqCounter.Add(1), Kind: kind, Scope: scope, Name: name}
}

func emits(t Tracer, scope Scope) bool {
	return t != nil && t.Enabled() && t.Level().ShouldEmit(scope)
}

// Span is one traced operation. A span whose scope the tracer filters out
// is inert: End and WithExtra do nothing and ID forwards the parent.
type Span struct {
	t      Tracer
	id     uint64
	parent uint64
	scope  Scope
	name   string
	start  time.Time
	extra  map[string]string
}

// Begin opens a span under parent (0 for a root).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !emits(t, scope) {
		return &Span{parent: parent}
	}
	s := &Span{t: t, id: spanCounter.Add(1), parent: parent, scope: scope, name: name}
	ev := newEvent(KindSpanBegin, scope, name)
	ev.SpanID, ev.ParentID = s.id, parent
	s.start = ev.Time
	t.Emit(ev)
	return s
}

// End closes the span with an optional detail and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.t == nil {
		return 0
	}
	ev := newEvent(KindSpanEnd, s.scope, s.name)
	ev.SpanID, ev.ParentID = s.id, s.parent
	ev.Detail, ev.Extra = detail, s.extra
	s.t.Emit(ev)
	return ev.Time.Sub(s.start)
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.t == nil {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// ID is the span's own ID, or its parent's for an inert span.
func (s *Span) ID() uint64 {
	switch {
	case s == nil:
		return 0
	case s.id == 0:
		return s.parent
	}
	return s.id
}

// Point records an instant event under parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if !emits(t, scope) {
		return
	}
	ev := newEvent(KindPoint, scope, name)
	ev.ParentID, ev.Detail = parent, detail
	t.Emit(ev)
}
