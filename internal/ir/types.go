package ir

import (
	"github.com/Masterminds/semver/v3"
)

// DeclName identifies a declaration within one container session.
type DeclName string

// Kind is the closed set of declaration kinds.
type Kind int

const (
	KindStruct Kind = iota
	KindUnion
	KindEnumeration
	KindTypedef
	KindArray
	KindMap
)

// Kinds lists every declaration kind in emission order.
var Kinds = []Kind{KindStruct, KindUnion, KindEnumeration, KindTypedef, KindArray, KindMap}

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindEnumeration:
		return "enumeration"
	case KindTypedef:
		return "typedef"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Template returns the template file used to render declarations of this kind.
func (k Kind) Template() string {
	return k.String() + ".tpl"
}

// Declaration is a named type definition.
//
// Declaration is a closed variant implemented by *Struct, *Union,
// *Enumeration, *Typedef, *Array and *Map.
type Declaration interface {
	DeclName() DeclName
	Kind() Kind

	isDeclaration()
}

// Field is a named, typed member of a struct, union or method signature.
type Field struct {
	Name string  `json:"name"`
	Type TypeRef `json:"type"`
}

// Enumerator is one member of an enumeration. Value is nil when the
// enumerator has no explicit value.
type Enumerator struct {
	Name  string  `json:"name"`
	Value *string `json:"value,omitempty"`
}

// Struct is a record of fields.
type Struct struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Union holds exactly one of its fields at a time.
type Union struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Enumeration is a set of named constants, optionally extending another
// enumeration.
type Enumeration struct {
	Name        string       `json:"name"`
	Extends     string       `json:"extends,omitempty"`
	Enumerators []Enumerator `json:"enumerators"`
}

// Typedef introduces an alias for another type.
type Typedef struct {
	Name string  `json:"name"`
	Type TypeRef `json:"type"`
}

// Array is a named collection of Elem.
type Array struct {
	Name string  `json:"name"`
	Elem TypeRef `json:"elem"`
}

// Map is a named associative container.
type Map struct {
	Name  string  `json:"name"`
	Key   TypeRef `json:"key"`
	Value TypeRef `json:"value"`
}

func (d *Struct) DeclName() DeclName      { return DeclName(d.Name) }
func (d *Union) DeclName() DeclName       { return DeclName(d.Name) }
func (d *Enumeration) DeclName() DeclName { return DeclName(d.Name) }
func (d *Typedef) DeclName() DeclName     { return DeclName(d.Name) }
func (d *Array) DeclName() DeclName       { return DeclName(d.Name) }
func (d *Map) DeclName() DeclName         { return DeclName(d.Name) }

func (*Struct) Kind() Kind      { return KindStruct }
func (*Union) Kind() Kind       { return KindUnion }
func (*Enumeration) Kind() Kind { return KindEnumeration }
func (*Typedef) Kind() Kind     { return KindTypedef }
func (*Array) Kind() Kind       { return KindArray }
func (*Map) Kind() Kind         { return KindMap }

func (*Struct) isDeclaration()      {}
func (*Union) isDeclaration()       {}
func (*Enumeration) isDeclaration() {}
func (*Typedef) isDeclaration()     {}
func (*Array) isDeclaration()       {}
func (*Map) isDeclaration()         {}

// Method is an interface operation.
type Method struct {
	Name string  `json:"name"`
	In   []Field `json:"in,omitempty"`
	Out  []Field `json:"out,omitempty"`
}

// Attribute is an interface property.
type Attribute struct {
	Name string  `json:"name"`
	Type TypeRef `json:"type"`
}

// ContainerKind distinguishes interfaces from type collections.
type ContainerKind int

const (
	ContainerInterface ContainerKind = iota
	ContainerTypeCollection
)

func (k ContainerKind) String() string {
	if k == ContainerInterface {
		return "interface"
	}
	return "typeCollection"
}

// Container groups declarations that share one output unit.
type Container struct {
	Kind    ContainerKind   `json:"kind"`
	Name    string          `json:"name"`
	Version *semver.Version `json:"version,omitempty"`

	Structs      []*Struct      `json:"structs,omitempty"`
	Unions       []*Union       `json:"unions,omitempty"`
	Enumerations []*Enumeration `json:"enumerations,omitempty"`
	Typedefs     []*Typedef     `json:"typedefs,omitempty"`
	Arrays       []*Array       `json:"arrays,omitempty"`
	Maps         []*Map         `json:"maps,omitempty"`

	// Interfaces only.
	Methods    []*Method    `json:"methods,omitempty"`
	Attributes []*Attribute `json:"attributes,omitempty"`
}

// Declarations returns every declaration of the container, grouped by kind
// in Kinds order and in source order within a kind.
func (c *Container) Declarations() []Declaration {
	var decls []Declaration
	for _, d := range c.Structs {
		decls = append(decls, d)
	}
	for _, d := range c.Unions {
		decls = append(decls, d)
	}
	for _, d := range c.Enumerations {
		decls = append(decls, d)
	}
	for _, d := range c.Typedefs {
		decls = append(decls, d)
	}
	for _, d := range c.Arrays {
		decls = append(decls, d)
	}
	for _, d := range c.Maps {
		decls = append(decls, d)
	}
	return decls
}

// Import is a namespace made visible to a package by another model file.
type Import struct {
	Namespace string `json:"namespace"`
	From      string `json:"from,omitempty"`
}

// Package is one namespace of the model with its containers.
type Package struct {
	Name            string       `json:"name"`
	File            string       `json:"file,omitempty"`
	Imports         []Import     `json:"imports,omitempty"`
	Interfaces      []*Container `json:"interfaces,omitempty"`
	TypeCollections []*Container `json:"type_collections,omitempty"`
}

// ImportNamespaces returns the imported namespaces in declaration order.
func (p *Package) ImportNamespaces() []string {
	out := make([]string, 0, len(p.Imports))
	for _, imp := range p.Imports {
		out = append(out, imp.Namespace)
	}
	return out
}

// Containers returns interfaces followed by type collections.
func (p *Package) Containers() []*Container {
	out := make([]*Container, 0, len(p.Interfaces)+len(p.TypeCollections))
	out = append(out, p.Interfaces...)
	return append(out, p.TypeCollections...)
}
