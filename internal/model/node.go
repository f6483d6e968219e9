package model

// nodeKind is the shape of a decoded value.
type nodeKind int

const (
	nodeNull nodeKind = iota
	nodeScalar
	nodeMap
	nodeList
)

func (k nodeKind) String() string {
	switch k {
	case nodeNull:
		return "null"
	case nodeScalar:
		return "scalar"
	case nodeMap:
		return "map"
	case nodeList:
		return "list"
	default:
		return "unknown"
	}
}

// scalarType distinguishes integers from other scalars, which matters for
// enumerator values.
type scalarType int

const (
	scalarString scalarType = iota
	scalarInt
	scalarOther // bool, float
)

// node is the format-independent view of a decoded document. Map keys keep
// their source order.
type node struct {
	kind   nodeKind
	keys   []string
	fields map[string]*node
	items  []*node
	scalar string
	stype  scalarType
	pos    Pos
}

func newMap(pos Pos) *node {
	return &node{kind: nodeMap, fields: make(map[string]*node), pos: pos}
}

// set appends key to the map, or replaces its value if already present.
func (n *node) set(key string, v *node) {
	if _, ok := n.fields[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.fields[key] = v
}

// get returns the value of key, or nil when absent.
func (n *node) get(key string) *node {
	if n == nil || n.kind != nodeMap {
		return nil
	}
	return n.fields[key]
}
