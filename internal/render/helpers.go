package render

import (
	"strings"

	"github.com/roach88/francagen/internal/ir"
)

// primitives maps Franca primitive type names to their C++ spelling.
var primitives = map[string]string{
	"Boolean":    "bool",
	"Int8":       "int8_t",
	"UInt8":      "uint8_t",
	"Int16":      "int16_t",
	"UInt16":     "uint16_t",
	"Int32":      "int32_t",
	"UInt32":     "uint32_t",
	"Int64":      "int64_t",
	"UInt64":     "uint64_t",
	"Float":      "float",
	"Double":     "double",
	"String":     "std::string",
	"ByteBuffer": "std::vector<uint8_t>",
}

// IsPrimitive reports whether name is a Franca primitive type.
func IsPrimitive(name string) bool {
	_, ok := primitives[name]
	return ok
}

// RenderType returns the C++ spelling of t.
//
// Collections become std::vector of their element. References are qualified
// with their namespace, dots turned into "::", and prefixed with the optional
// base namespace. Primitive simple names are mapped to C++ types; any other
// simple name is emitted unchanged.
func RenderType(t ir.TypeRef, baseNamespace ...string) string {
	base := ""
	if len(baseNamespace) > 0 && baseNamespace[0] != "" {
		base = baseNamespace[0] + "::"
	}

	switch t := t.(type) {
	case ir.Collection:
		return "std::vector<" + RenderType(t.Elem, baseNamespace...) + ">"
	case ir.Reference:
		return base + strings.ReplaceAll(t.Namespace, ".", "::") + "::" + t.Name
	case ir.Simple:
		if cpp, ok := primitives[t.Name]; ok {
			return cpp
		}
		return t.Name
	default:
		return ""
	}
}

// RenderEnumerator returns "name,\n" or "name = value,\n".
func RenderEnumerator(e ir.Enumerator) string {
	if e.Value == nil {
		return e.Name + ",\n"
	}
	return e.Name + " = " + *e.Value + ",\n"
}

// DependencyName is the declaration name a use of t depends on: the element
// for collections, the referenced name for references, and the name itself
// otherwise.
func DependencyName(t ir.TypeRef) ir.DeclName {
	switch t := t.(type) {
	case ir.Collection:
		return DependencyName(t.Elem)
	case ir.Reference:
		return ir.DeclName(t.Name)
	case ir.Simple:
		return ir.DeclName(t.Name)
	default:
		return ""
	}
}

// Dependencies lists the names decl depends on, in field order, one entry
// per use. Duplicates are left in; the reference graph ignores them.
func Dependencies(decl ir.Declaration) []ir.DeclName {
	var deps []ir.DeclName
	switch d := decl.(type) {
	case *ir.Struct:
		for _, f := range d.Fields {
			deps = append(deps, DependencyName(f.Type))
		}
	case *ir.Union:
		for _, f := range d.Fields {
			deps = append(deps, DependencyName(f.Type))
		}
	case *ir.Enumeration:
		if d.Extends != "" {
			deps = append(deps, ir.DeclName(d.Extends))
		}
	case *ir.Typedef:
		deps = append(deps, DependencyName(d.Type))
	case *ir.Array:
		deps = append(deps, DependencyName(d.Elem))
	case *ir.Map:
		deps = append(deps, DependencyName(d.Key), DependencyName(d.Value))
	}
	return deps
}
