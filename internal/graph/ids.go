package graph

// EntityID identifies an entity in the graph arena.
type EntityID uint32

// NoEntityID marks the absence of an entity reference.
const NoEntityID EntityID = 0

// IsValid reports whether the ID refers to an allocated entity.
func (id EntityID) IsValid() bool { return id != NoEntityID }
