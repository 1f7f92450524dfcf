package graph

// EntityKind classifies semantic entities.
type EntityKind uint8

const (
	EntityInvalid EntityKind = iota
	EntityNamespace
	EntityClass
	EntityStruct
	EntityInterface
	EntityEnum
	EntityDelegate
	EntityTypeParameter
	EntityField
	EntityProperty
	EntityMethod
	EntityParameter
	EntityLocal
)

func (k EntityKind) String() string {
	switch k {
	case EntityNamespace:
		return "namespace"
	case EntityClass:
		return "class"
	case EntityStruct:
		return "struct"
	case EntityInterface:
		return "interface"
	case EntityEnum:
		return "enum"
	case EntityDelegate:
		return "delegate"
	case EntityTypeParameter:
		return "type parameter"
	case EntityField:
		return "field"
	case EntityProperty:
		return "property"
	case EntityMethod:
		return "method"
	case EntityParameter:
		return "parameter"
	case EntityLocal:
		return "local"
	default:
		return "invalid"
	}
}

// ParseKind maps a declaration keyword to a type kind.
func ParseKind(s string) (EntityKind, bool) {
	switch s {
	case "class":
		return EntityClass, true
	case "struct":
		return EntityStruct, true
	case "interface":
		return EntityInterface, true
	case "enum":
		return EntityEnum, true
	case "delegate":
		return EntityDelegate, true
	}
	return EntityInvalid, false
}

// IsType reports whether k denotes a type, type parameters included.
func (k EntityKind) IsType() bool {
	switch k {
	case EntityClass, EntityStruct, EntityInterface, EntityEnum, EntityDelegate, EntityTypeParameter:
		return true
	}
	return false
}

// IsTypeDecl reports whether k is a declared (non-parameter) type.
func (k EntityKind) IsTypeDecl() bool {
	return k.IsType() && k != EntityTypeParameter
}

// IsMember reports whether k is a non-type member of a type.
func (k EntityKind) IsMember() bool {
	switch k {
	case EntityField, EntityProperty, EntityMethod:
		return true
	}
	return false
}

// IsVariable reports whether k is an addressable storage location.
func (k EntityKind) IsVariable() bool {
	switch k {
	case EntityField, EntityParameter, EntityLocal:
		return true
	}
	return false
}

// Flags encode misc entity attributes.
type Flags uint16

const (
	FlagStatic Flags = 1 << iota
	FlagPartial
	FlagBuiltin
	FlagAbstract
	FlagSpecialized
	FlagImported
	FlagReadOnly
)

// Strings returns textual flag labels.
func (f Flags) Strings() []string {
	if f == 0 {
		return nil
	}
	names := []struct {
		flag  Flags
		label string
	}{
		{FlagStatic, "static"},
		{FlagPartial, "partial"},
		{FlagBuiltin, "builtin"},
		{FlagAbstract, "abstract"},
		{FlagSpecialized, "specialized"},
		{FlagImported, "imported"},
		{FlagReadOnly, "readonly"},
	}
	labels := make([]string, 0, 4)
	for _, n := range names {
		if f&n.flag != 0 {
			labels = append(labels, n.label)
		}
	}
	return labels
}
