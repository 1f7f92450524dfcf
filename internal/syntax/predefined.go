package syntax

// Predefined maps predefined type keywords to their System type names.
var Predefined = map[string]string{
	"object":  "Object",
	"string":  "String",
	"bool":    "Boolean",
	"char":    "Char",
	"byte":    "Byte",
	"sbyte":   "SByte",
	"short":   "Int16",
	"ushort":  "UInt16",
	"int":     "Int32",
	"uint":    "UInt32",
	"long":    "Int64",
	"ulong":   "UInt64",
	"float":   "Single",
	"double":  "Double",
	"decimal": "Decimal",
	"void":    "Void",
}

// PredefinedName expands a keyword into global::System.<Type>.
func PredefinedName(keyword string) (*Name, bool) {
	typeName, ok := Predefined[keyword]
	if !ok {
		return nil, false
	}
	return &Name{
		Global:  true,
		Parts:   []NamePart{{Ident: "System"}, {Ident: typeName}},
		Keyword: keyword,
	}, true
}
