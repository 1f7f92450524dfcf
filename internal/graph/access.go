package graph

// Access is a declared accessibility level.
type Access uint8

const (
	AccessDefault Access = iota
	AccessPublic
	AccessInternal
	AccessProtected
	AccessProtectedInternal
	AccessPrivateProtected
	AccessPrivate
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessInternal:
		return "internal"
	case AccessProtected:
		return "protected"
	case AccessProtectedInternal:
		return "protected internal"
	case AccessPrivateProtected:
		return "private protected"
	case AccessPrivate:
		return "private"
	default:
		return "default"
	}
}

// ParseAccess maps a modifier spelling to an Access level; "" is the default.
func ParseAccess(s string) (Access, bool) {
	switch s {
	case "":
		return AccessDefault, true
	case "public":
		return AccessPublic, true
	case "internal":
		return AccessInternal, true
	case "protected":
		return AccessProtected, true
	case "protected internal":
		return AccessProtectedInternal, true
	case "private protected":
		return AccessPrivateProtected, true
	case "private":
		return AccessPrivate, true
	}
	return AccessDefault, false
}

// DefaultAccess returns the implicit accessibility of an entity of kind
// declared inside a parent of parentKind.
func DefaultAccess(kind, parentKind EntityKind) Access {
	switch {
	case kind == EntityNamespace:
		return AccessPublic
	case parentKind == EntityNamespace:
		return AccessInternal
	case parentKind == EntityInterface || parentKind == EntityEnum:
		return AccessPublic
	default:
		return AccessPrivate
	}
}

// IsAccessible reports whether target can be named from the context entity
// from. Every enclosing type of target must be accessible as well. Base
// chains are read without forcing resolution, so a protected check made
// before base references resolve only sees the declaring type itself.
func (g *Graph) IsAccessible(target, from EntityID) bool {
	for cur := target; cur.IsValid(); {
		e := g.Entity(cur)
		if e == nil || e.Kind == EntityNamespace {
			return true
		}
		if !g.accessibleLevel(e, from) {
			return false
		}
		cur = e.Parent
	}
	return true
}

func (g *Graph) accessibleLevel(e *Entity, from EntityID) bool {
	if e.Kind == EntityTypeParameter || e.Kind == EntityParameter || e.Kind == EntityLocal {
		return true
	}
	if e.Flags&FlagSpecialized != 0 && e.Origin.IsValid() {
		if origin := g.Entity(e.Origin); origin != nil {
			return g.accessibleLevel(origin, from)
		}
	}
	declaring := e.Parent
	sameAssembly := func() bool {
		ctx := g.Entity(from)
		return ctx == nil || ctx.Assembly == e.Assembly
	}
	within := func() bool { return g.IsWithin(from, g.definition(declaring)) }
	derived := func() bool {
		for _, t := range g.EnclosingTypes(from) {
			if g.DerivesFrom(t, g.definition(declaring)) {
				return true
			}
		}
		return false
	}
	switch e.Access {
	case AccessPublic:
		return true
	case AccessInternal:
		return sameAssembly()
	case AccessProtected:
		return within() || derived()
	case AccessProtectedInternal:
		return sameAssembly() || within() || derived()
	case AccessPrivateProtected:
		return sameAssembly() && (within() || derived())
	case AccessPrivate:
		return within()
	default:
		parent := g.Entity(declaring)
		if parent == nil {
			return true
		}
		if DefaultAccess(e.Kind, parent.Kind) == AccessInternal {
			return sameAssembly()
		}
		return within()
	}
}

// definition maps a specialized type to its generic definition.
func (g *Graph) definition(id EntityID) EntityID {
	if e := g.Entity(id); e != nil && e.Origin.IsValid() {
		return e.Origin
	}
	return id
}

// IsWithin reports whether ctx is scope or lexically nested inside it.
func (g *Graph) IsWithin(ctx, scope EntityID) bool {
	for cur := ctx; cur.IsValid(); {
		if g.definition(cur) == scope {
			return true
		}
		e := g.Entity(cur)
		if e == nil {
			return false
		}
		cur = e.Parent
	}
	return false
}

// DerivesFrom reports whether typ has base somewhere in its already resolved
// base chain. Unresolved or failed base references end the walk.
func (g *Graph) DerivesFrom(typ, base EntityID) bool {
	seen := make(map[EntityID]bool)
	work := []EntityID{typ}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		e := g.Entity(cur)
		if e == nil {
			continue
		}
		if e.Flags&FlagSpecialized != 0 {
			// Specialized bases are written during expansion; the
			// definition's chain names the same generic definitions.
			work = append(work, e.Origin)
			continue
		}
		for _, ref := range e.Bases {
			target, ok := PeekTarget(ref)
			if !ok {
				continue
			}
			if g.definition(target) == base {
				return true
			}
			work = append(work, target)
		}
	}
	return false
}
