package graph

import (
	"fmt"
	"sync"

	"fortio.org/safecast"
)

// Entities stores all entities. Slots hold pointers so entity addresses stay
// stable while generic instantiation appends concurrently.
type Entities struct {
	mu   sync.RWMutex
	data []*Entity
}

// NewEntities creates an arena with optional capacity hint.
func NewEntities(capacity uint32) *Entities {
	if capacity == 0 {
		capacity = 128
	}
	return &Entities{
		data: make([]*Entity, 1, capacity+1), // index 0 reserved for NoEntityID
	}
}

// New allocates e in the arena, sets its ID and returns it.
func (a *Entities) New(e *Entity) EntityID {
	if e == nil {
		panic("graph.Entities.New: nil entity")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	value, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("entity arena overflow: %w", err))
	}
	e.ID = EntityID(value)
	a.data = append(a.data, e)
	return e.ID
}

// Get returns the entity or nil for an invalid ID.
func (a *Entities) Get(id EntityID) *Entity {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !id.IsValid() || int(id) >= len(a.data) {
		return nil
	}
	return a.data[id]
}

// Len reports the number of entities excluding the sentinel.
func (a *Entities) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.data) - 1
}

// Snapshot returns the entities allocated so far, sentinel excluded.
func (a *Entities) Snapshot() []*Entity {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*Entity, len(a.data)-1)
	copy(out, a.data[1:])
	return out
}
