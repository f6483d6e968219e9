package model

import (
	"fmt"
	"slices"

	"github.com/Masterminds/semver/v3"

	"github.com/roach88/francagen/internal/ir"
)

// Document keys.
const (
	keyPackages        = "packages"
	keyImports         = "imports"
	keyInterfaces      = "interfaces"
	keyTypeCollections = "typeCollections"

	keyVersion      = "version"
	keyStructs      = "structs"
	keyUnions       = "unions"
	keyEnumerations = "enumerations"
	keyTypedefs     = "typedefs"
	keyArrays       = "arrays"
	keyMaps         = "maps"
	keyMethods      = "methods"
	keyAttributes   = "attributes"
)

var (
	packageKeys        = []string{keyImports, keyInterfaces, keyTypeCollections}
	typeCollectionKeys = []string{keyVersion, keyStructs, keyUnions, keyEnumerations, keyTypedefs, keyArrays, keyMaps}
	interfaceKeys      = append(append([]string{}, typeCollectionKeys...), keyMethods, keyAttributes)
)

// compiler builds ir values from a decoded document of one file.
type compiler struct {
	file string
}

func (c *compiler) errorf(code string, n *node, field, format string, args ...any) *ModelError {
	me := &ModelError{Code: code, File: c.file, Field: field, Message: fmt.Sprintf(format, args...)}
	if n != nil {
		me.Pos = n.pos
	}
	return me
}

// compileDocument converts the root node into packages in source order.
func compileDocument(file string, root *node) ([]*ir.Package, error) {
	c := &compiler{file: file}

	if root == nil || root.kind == nodeNull {
		return nil, c.errorf(ErrCodeNoPackages, root, "", "document is empty")
	}
	if root.kind != nodeMap {
		return nil, c.errorf(ErrCodeStructure, root, "", "document must be a map, got %s", root.kind)
	}
	if err := c.checkKeys(root, "", []string{keyPackages}); err != nil {
		return nil, err
	}

	pkgs, err := c.mapAt(root, keyPackages, keyPackages)
	if err != nil {
		return nil, err
	}
	if pkgs == nil || len(pkgs.keys) == 0 {
		return nil, c.errorf(ErrCodeNoPackages, root, keyPackages, "no packages declared")
	}

	out := make([]*ir.Package, 0, len(pkgs.keys))
	for _, name := range pkgs.keys {
		pkg, err := c.compilePackage(name, pkgs.fields[name], joinPath(keyPackages, name))
		if err != nil {
			return nil, err
		}
		out = append(out, pkg)
	}
	return out, nil
}

func (c *compiler) compilePackage(name string, n *node, path string) (*ir.Package, error) {
	pkg := &ir.Package{Name: name, File: c.file}
	if n.kind == nodeNull {
		return pkg, nil
	}
	if n.kind != nodeMap {
		return nil, c.errorf(ErrCodeStructure, n, path, "package must be a map, got %s", n.kind)
	}
	if err := c.checkKeys(n, path, packageKeys); err != nil {
		return nil, err
	}

	imports, err := c.compileImports(n.get(keyImports), joinPath(path, keyImports))
	if err != nil {
		return nil, err
	}
	pkg.Imports = imports

	pkg.Interfaces, err = c.compileContainers(n, keyInterfaces, ir.ContainerInterface, path)
	if err != nil {
		return nil, err
	}
	pkg.TypeCollections, err = c.compileContainers(n, keyTypeCollections, ir.ContainerTypeCollection, path)
	if err != nil {
		return nil, err
	}
	return pkg, nil
}

// compileImports accepts a list whose items are either a namespace string or
// a map with "namespace" and optional "from".
func (c *compiler) compileImports(n *node, path string) ([]ir.Import, error) {
	if n == nil || n.kind == nodeNull {
		return nil, nil
	}
	if n.kind != nodeList {
		return nil, c.errorf(ErrCodeStructure, n, path, "imports must be a list, got %s", n.kind)
	}

	var out []ir.Import
	for i, item := range n.items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		switch item.kind {
		case nodeScalar:
			out = append(out, ir.Import{Namespace: item.scalar})
		case nodeMap:
			if err := c.checkKeys(item, itemPath, []string{"namespace", "from"}); err != nil {
				return nil, err
			}
			ns, err := c.scalarAt(item, "namespace", itemPath)
			if err != nil {
				return nil, err
			}
			if ns == "" {
				return nil, c.errorf(ErrCodeStructure, item, itemPath, "import namespace is required")
			}
			from, err := c.scalarAt(item, "from", itemPath)
			if err != nil {
				return nil, err
			}
			out = append(out, ir.Import{Namespace: ns, From: from})
		default:
			return nil, c.errorf(ErrCodeStructure, item, itemPath, "import must be a string or map, got %s", item.kind)
		}
	}
	return out, nil
}

func (c *compiler) compileContainers(pkg *node, key string, kind ir.ContainerKind, pkgPath string) ([]*ir.Container, error) {
	path := joinPath(pkgPath, key)
	group, err := c.mapAt(pkg, key, path)
	if err != nil || group == nil {
		return nil, err
	}

	out := make([]*ir.Container, 0, len(group.keys))
	for _, name := range group.keys {
		cont, err := c.compileContainer(name, kind, group.fields[name], joinPath(path, name))
		if err != nil {
			return nil, err
		}
		out = append(out, cont)
	}
	return out, nil
}

func (c *compiler) compileContainer(name string, kind ir.ContainerKind, n *node, path string) (*ir.Container, error) {
	cont := &ir.Container{Kind: kind, Name: name}
	if n.kind == nodeNull {
		return cont, nil
	}
	if n.kind != nodeMap {
		return nil, c.errorf(ErrCodeStructure, n, path, "%s must be a map, got %s", kind, n.kind)
	}

	allowed := typeCollectionKeys
	if kind == ir.ContainerInterface {
		allowed = interfaceKeys
	}
	if err := c.checkKeys(n, path, allowed); err != nil {
		return nil, err
	}

	var err error
	if cont.Version, err = c.compileVersion(n.get(keyVersion), joinPath(path, keyVersion)); err != nil {
		return nil, err
	}

	err = c.eachEntry(n, keyStructs, path, func(name string, v *node, p string) error {
		fields, err := c.compileFields(v, p)
		cont.Structs = append(cont.Structs, &ir.Struct{Name: name, Fields: fields})
		return err
	})
	if err != nil {
		return nil, err
	}

	err = c.eachEntry(n, keyUnions, path, func(name string, v *node, p string) error {
		fields, err := c.compileFields(v, p)
		cont.Unions = append(cont.Unions, &ir.Union{Name: name, Fields: fields})
		return err
	})
	if err != nil {
		return nil, err
	}

	err = c.eachEntry(n, keyEnumerations, path, func(name string, v *node, p string) error {
		enum, err := c.compileEnumeration(name, v, p)
		cont.Enumerations = append(cont.Enumerations, enum)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = c.eachEntry(n, keyTypedefs, path, func(name string, v *node, p string) error {
		t, err := c.typeRef(v, p)
		cont.Typedefs = append(cont.Typedefs, &ir.Typedef{Name: name, Type: t})
		return err
	})
	if err != nil {
		return nil, err
	}

	err = c.eachEntry(n, keyArrays, path, func(name string, v *node, p string) error {
		t, err := c.typeRef(v, p)
		cont.Arrays = append(cont.Arrays, &ir.Array{Name: name, Elem: t})
		return err
	})
	if err != nil {
		return nil, err
	}

	err = c.eachEntry(n, keyMaps, path, func(name string, v *node, p string) error {
		m, err := c.compileMap(name, v, p)
		cont.Maps = append(cont.Maps, m)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = c.eachEntry(n, keyMethods, path, func(name string, v *node, p string) error {
		m, err := c.compileMethod(name, v, p)
		cont.Methods = append(cont.Methods, m)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = c.eachEntry(n, keyAttributes, path, func(name string, v *node, p string) error {
		t, err := c.typeRef(v, p)
		cont.Attributes = append(cont.Attributes, &ir.Attribute{Name: name, Type: t})
		return err
	})
	if err != nil {
		return nil, err
	}

	return cont, nil
}

// compileVersion accepts "1.0", 1, 1.0 or {major: 1, minor: 0}.
func (c *compiler) compileVersion(n *node, path string) (*semver.Version, error) {
	if n == nil || n.kind == nodeNull {
		return nil, nil
	}

	var raw string
	switch n.kind {
	case nodeScalar:
		raw = n.scalar
	case nodeMap:
		if err := c.checkKeys(n, path, []string{"major", "minor"}); err != nil {
			return nil, err
		}
		major, err := c.scalarAt(n, "major", path)
		if err != nil {
			return nil, err
		}
		minor, err := c.scalarAt(n, "minor", path)
		if err != nil {
			return nil, err
		}
		if minor == "" {
			minor = "0"
		}
		raw = major + "." + minor
	default:
		return nil, c.errorf(ErrCodeVersion, n, path, "version must be a string or map, got %s", n.kind)
	}

	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, c.errorf(ErrCodeVersion, n, path, "invalid version %q: %v", raw, err)
	}
	return v, nil
}

// compileFields reads a map of member name to type expression.
func (c *compiler) compileFields(n *node, path string) ([]ir.Field, error) {
	if n == nil || n.kind == nodeNull {
		return nil, nil
	}
	if n.kind != nodeMap {
		return nil, c.errorf(ErrCodeStructure, n, path, "fields must be a map of name to type, got %s", n.kind)
	}

	fields := make([]ir.Field, 0, len(n.keys))
	for _, name := range n.keys {
		t, err := c.typeRef(n.fields[name], joinPath(path, name))
		if err != nil {
			return nil, err
		}
		fields = append(fields, ir.Field{Name: name, Type: t})
	}
	return fields, nil
}

func (c *compiler) compileEnumeration(name string, n *node, path string) (*ir.Enumeration, error) {
	enum := &ir.Enumeration{Name: name}
	if n.kind == nodeNull {
		return enum, nil
	}
	if n.kind != nodeMap {
		return nil, c.errorf(ErrCodeStructure, n, path, "enumeration must be a map, got %s", n.kind)
	}
	if err := c.checkKeys(n, path, []string{"extends", "enumerators"}); err != nil {
		return nil, err
	}

	extends, err := c.scalarAt(n, "extends", path)
	if err != nil {
		return nil, err
	}
	enum.Extends = extends

	enumerators, err := c.mapAt(n, "enumerators", joinPath(path, "enumerators"))
	if err != nil || enumerators == nil {
		return enum, err
	}
	for _, en := range enumerators.keys {
		v := enumerators.fields[en]
		e := ir.Enumerator{Name: en}
		switch {
		case v.kind == nodeNull:
		case v.kind == nodeScalar && v.stype != scalarOther:
			value := v.scalar
			e.Value = &value
		default:
			return nil, c.errorf(ErrCodeEnumerator, v, joinPath(path, "enumerators."+en),
				"enumerator value must be null, an integer or a string")
		}
		enum.Enumerators = append(enum.Enumerators, e)
	}
	return enum, nil
}

func (c *compiler) compileMap(name string, n *node, path string) (*ir.Map, error) {
	if n.kind != nodeMap {
		return nil, c.errorf(ErrCodeStructure, n, path, "map must have key and value, got %s", n.kind)
	}
	if err := c.checkKeys(n, path, []string{"key", "value"}); err != nil {
		return nil, err
	}
	key, err := c.typeRef(n.get("key"), joinPath(path, "key"))
	if err != nil {
		return nil, err
	}
	value, err := c.typeRef(n.get("value"), joinPath(path, "value"))
	if err != nil {
		return nil, err
	}
	return &ir.Map{Name: name, Key: key, Value: value}, nil
}

func (c *compiler) compileMethod(name string, n *node, path string) (*ir.Method, error) {
	m := &ir.Method{Name: name}
	if n.kind == nodeNull {
		return m, nil
	}
	if n.kind != nodeMap {
		return nil, c.errorf(ErrCodeStructure, n, path, "method must be a map, got %s", n.kind)
	}
	if err := c.checkKeys(n, path, []string{"in", "out"}); err != nil {
		return nil, err
	}

	var err error
	if m.In, err = c.compileFields(n.get("in"), joinPath(path, "in")); err != nil {
		return nil, err
	}
	if m.Out, err = c.compileFields(n.get("out"), joinPath(path, "out")); err != nil {
		return nil, err
	}
	return m, nil
}

// eachEntry calls fn for every entry of the map under key, in source order.
func (c *compiler) eachEntry(n *node, key, path string, fn func(name string, v *node, path string) error) error {
	group, err := c.mapAt(n, key, joinPath(path, key))
	if err != nil || group == nil {
		return err
	}
	for _, name := range group.keys {
		if err := fn(name, group.fields[name], joinPath(path, key+"."+name)); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) typeRef(n *node, path string) (ir.TypeRef, error) {
	if n == nil {
		return nil, c.errorf(ErrCodeType, nil, path, "type is required")
	}
	if n.kind != nodeScalar || n.stype != scalarString {
		return nil, c.errorf(ErrCodeType, n, path, "type must be a string, got %s", n.kind)
	}
	t, err := ir.ParseTypeRef(n.scalar)
	if err != nil {
		return nil, c.errorf(ErrCodeType, n, path, "%v", err)
	}
	return t, nil
}

// mapAt returns the map under key, nil if absent or null.
func (c *compiler) mapAt(n *node, key, path string) (*node, error) {
	v := n.get(key)
	if v == nil || v.kind == nodeNull {
		return nil, nil
	}
	if v.kind != nodeMap {
		return nil, c.errorf(ErrCodeStructure, v, path, "must be a map, got %s", v.kind)
	}
	return v, nil
}

// scalarAt returns the scalar under key, "" if absent or null.
func (c *compiler) scalarAt(n *node, key, path string) (string, error) {
	v := n.get(key)
	if v == nil || v.kind == nodeNull {
		return "", nil
	}
	if v.kind != nodeScalar {
		return "", c.errorf(ErrCodeStructure, v, joinPath(path, key), "must be a scalar, got %s", v.kind)
	}
	return v.scalar, nil
}

func (c *compiler) checkKeys(n *node, path string, allowed []string) error {
	for _, k := range n.keys {
		if !slices.Contains(allowed, k) {
			return c.errorf(ErrCodeUnknownKey, n.fields[k], joinPath(path, k), "unknown key %q", k)
		}
	}
	return nil
}
