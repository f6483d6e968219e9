package ir

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// TypeRef is the declared type of a field, typedef, array element or map
// key/value.
//
// TypeRef is a closed variant: the only implementations are Simple,
// Reference and Collection.
type TypeRef interface {
	// String returns the model notation of the type ("UInt32", "ns.Name",
	// "Track[]").
	String() string

	isTypeRef()
}

// Simple names a primitive or a declaration in the same namespace.
type Simple struct {
	Name string `json:"name"`
}

// Reference names a declaration in another namespace.
type Reference struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// Collection is a variable-length sequence of Elem.
type Collection struct {
	Elem TypeRef `json:"elem"`
}

func (Simple) isTypeRef()     {}
func (Reference) isTypeRef()  {}
func (Collection) isTypeRef() {}

func (s Simple) String() string { return s.Name }

func (r Reference) String() string { return r.Namespace + "." + r.Name }

func (c Collection) String() string {
	if c.Elem == nil {
		return "[]"
	}
	return c.Elem.String() + "[]"
}

// ParseTypeRef parses the model notation of a type.
//
//	"UInt32"            -> Simple{Name: "UInt32"}
//	"org.common.Pos"    -> Reference{Namespace: "org.common", Name: "Pos"}
//	"Track[]"           -> Collection{Elem: Simple{Name: "Track"}}
//	"org.common.Pos[][]" -> Collection{Elem: Collection{Elem: Reference{...}}}
func ParseTypeRef(s string) (TypeRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty type")
	}

	if inner, ok := strings.CutSuffix(s, "[]"); ok {
		elem, err := ParseTypeRef(inner)
		if err != nil {
			return nil, errors.Wrapf(err, "collection element of %q", s)
		}
		return Collection{Elem: elem}, nil
	}

	if strings.ContainsAny(s, "[] \t") {
		return nil, errors.Newf("malformed type %q", s)
	}

	if i := strings.LastIndex(s, "."); i >= 0 {
		ns, name := s[:i], s[i+1:]
		if ns == "" || name == "" {
			return nil, errors.Newf("malformed reference %q", s)
		}
		return Reference{Namespace: ns, Name: name}, nil
	}

	return Simple{Name: s}, nil
}

// MustParseTypeRef is like ParseTypeRef but panics on error.
// Use only in tests or with constant input.
func MustParseTypeRef(s string) TypeRef {
	t, err := ParseTypeRef(s)
	if err != nil {
		panic(err)
	}
	return t
}
