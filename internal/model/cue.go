package model

import (
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// decodeCUE compiles a CUE file and converts the resulting value into a node.
// Each call uses its own cue.Context.
func decodeCUE(file string, data []byte) (*node, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(file))
	if err := v.Err(); err != nil {
		return nil, cueError(file, err)
	}
	// Reports conflicts below the root; incomplete values are caught per node.
	if err := v.Validate(); err != nil {
		return nil, cueError(file, err)
	}
	return cueNode(file, v, "")
}

func cueNode(file string, v cue.Value, path string) (*node, error) {
	pos := cuePos(v)

	switch v.Kind() {
	case cue.NullKind:
		return &node{kind: nodeNull, pos: pos}, nil

	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, cueError(file, err)
		}
		return &node{kind: nodeScalar, scalar: s, stype: scalarString, pos: pos}, nil

	case cue.IntKind:
		i, err := v.Int64()
		if err != nil {
			return nil, cueError(file, err)
		}
		return &node{kind: nodeScalar, scalar: strconv.FormatInt(i, 10), stype: scalarInt, pos: pos}, nil

	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, cueError(file, err)
		}
		return &node{kind: nodeScalar, scalar: strconv.FormatFloat(f, 'f', -1, 64), stype: scalarOther, pos: pos}, nil

	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, cueError(file, err)
		}
		return &node{kind: nodeScalar, scalar: strconv.FormatBool(b), stype: scalarOther, pos: pos}, nil

	case cue.StructKind:
		n := newMap(pos)
		iter, err := v.Fields()
		if err != nil {
			return nil, cueError(file, err)
		}
		for iter.Next() {
			label := iter.Label()
			child, err := cueNode(file, iter.Value(), joinPath(path, label))
			if err != nil {
				return nil, err
			}
			n.set(label, child)
		}
		return n, nil

	case cue.ListKind:
		n := &node{kind: nodeList, pos: pos}
		iter, err := v.List()
		if err != nil {
			return nil, cueError(file, err)
		}
		for iter.Next() {
			child, err := cueNode(file, iter.Value(), path)
			if err != nil {
				return nil, err
			}
			n.items = append(n.items, child)
		}
		return n, nil

	default:
		return nil, &ModelError{
			Code:    ErrCodeStructure,
			File:    file,
			Field:   path,
			Message: "value must be concrete",
			Pos:     pos,
		}
	}
}

func cuePos(v cue.Value) Pos {
	p := v.Pos()
	if !p.IsValid() {
		return Pos{}
	}
	return Pos{Line: p.Line(), Column: p.Column()}
}

// cueError converts the first CUE error into a ModelError with its position.
func cueError(file string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ModelError{Code: ErrCodeSyntax, File: file, Message: err.Error()}
	}

	first := errs[0]
	me := &ModelError{Code: ErrCodeSyntax, File: file, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 && positions[0].IsValid() {
		me.Pos = Pos{Line: positions[0].Line(), Column: positions[0].Column()}
	}
	return me
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
