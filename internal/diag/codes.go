package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Import layer: malformed names, expressions and unit documents.
	SynInfo             Code = 2000
	SynBadName          Code = 2001
	SynBadExpression    Code = 2002
	SynBadUnit          Code = 2003
	SynUnknownKind      Code = 2004
	SynUnknownAccess    Code = 2005
	SynBadStatement     Code = 2006
	SynDuplicateTypeArg Code = 2007

	// Name binding and declaration spaces.
	SemaInfo                       Code = 3000
	SemaAliasNameConflict          Code = 3001
	SemaAmbiguousDeclarations      Code = 3002
	SemaEntityInaccessible         Code = 3003
	SemaInvalidMemberReference     Code = 3004
	SemaNamespaceExpectedTypeFound Code = 3005
	SemaTypeNameExpected           Code = 3006
	SemaNamespaceOrTypeUnresolved  Code = 3007
	SemaSimpleNameUndefined        Code = 3008
	SemaObjectReferenceRequired    Code = 3009
	SemaQualifierRefersToType      Code = 3010
	SemaStaticMemberExpected       Code = 3011
	SemaTypeArgumentInNamespace    Code = 3012
	SemaTypeNameMemberNameConflict Code = 3013
	SemaCircularBaseDependency     Code = 3014
	SemaValueExpected              Code = 3015
	SemaTypeArgumentCount          Code = 3016
	SemaDuplicateUsing             Code = 3017

	IOLoadFileError Code = 4001

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:                    "Unknown error",
	SynInfo:                        "Syntax information",
	SynBadName:                     "Malformed namespace-or-type name",
	SynBadExpression:               "Malformed expression",
	SynBadUnit:                     "Malformed compilation unit",
	SynUnknownKind:                 "Unknown declaration kind",
	SynUnknownAccess:               "Unknown accessibility modifier",
	SynBadStatement:                "Malformed statement",
	SynDuplicateTypeArg:            "Duplicate type parameter",
	SemaInfo:                       "Semantic information",
	SemaAliasNameConflict:          "Alias name conflicts with a namespace member",
	SemaAmbiguousDeclarations:      "Ambiguous declarations",
	SemaEntityInaccessible:         "Entity is inaccessible",
	SemaInvalidMemberReference:     "Invalid member reference",
	SemaNamespaceExpectedTypeFound: "Namespace expected, type found",
	SemaTypeNameExpected:           "Type name expected",
	SemaNamespaceOrTypeUnresolved:  "Namespace or type name could not be resolved",
	SemaSimpleNameUndefined:        "Simple name is not defined",
	SemaObjectReferenceRequired:    "Object reference required",
	SemaQualifierRefersToType:      "Qualifier refers to a type",
	SemaStaticMemberExpected:       "Static member expected",
	SemaTypeArgumentInNamespace:    "Type argument in namespace name",
	SemaTypeNameMemberNameConflict: "Type name conflicts with member name",
	SemaCircularBaseDependency:     "Circular base type dependency",
	SemaValueExpected:              "Value expected",
	SemaTypeArgumentCount:          "Wrong number of type arguments",
	SemaDuplicateUsing:             "Using directive appeared previously",
	IOLoadFileError:                "Failed to load file",
	ObsInfo:                        "Observability information",
	ObsTimings:                     "Timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
