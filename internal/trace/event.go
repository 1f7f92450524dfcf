package trace

import "time"

// Kind tells span boundaries apart from instant events.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point", KindHeartbeat: "heartbeat"}

func (k Kind) String() string { return lookupName(kindNames[:], int(k)) }

// Scope is the granularity of an event; smaller is coarser. Levels filter
// on it.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // a command or a whole check
	ScopeStage                   // one pipeline stage
	ScopeEntity                  // one entity task inside a stage
)

var scopeNames = [...]string{ScopeDriver: "driver", ScopeStage: "stage", ScopeEntity: "entity"}

func (s Scope) String() string { return lookupName(scopeNames[:], int(s)) }

func lookupName(names []string, i int) string {
	if i <= 0 || i >= len(names) {
		return "unknown"
	}
	return names[i]
}

// Event is one trace record. Seq is global and monotonic, so interleaved
// goroutines can be reordered by readers.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	Name     string // "check", "resolve-type-bodies", "entity:App.Program"
	Detail   string
	Extra    map[string]string
}
