package model

import (
	"gopkg.in/yaml.v3"
)

// decodeYAML parses a YAML file through the yaml.v3 node API, which keeps
// mapping keys in source order.
func decodeYAML(file string, data []byte) (*node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ModelError{Code: ErrCodeSyntax, File: file, Message: err.Error()}
	}
	if doc.Kind == 0 {
		// Empty input
		return &node{kind: nodeNull}, nil
	}
	return yamlNode(file, &doc, "")
}

func yamlNode(file string, y *yaml.Node, path string) (*node, error) {
	pos := Pos{Line: y.Line, Column: y.Column}

	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return &node{kind: nodeNull, pos: pos}, nil
		}
		return yamlNode(file, y.Content[0], path)

	case yaml.AliasNode:
		return yamlNode(file, y.Alias, path)

	case yaml.MappingNode:
		n := newMap(pos)
		for i := 0; i+1 < len(y.Content); i += 2 {
			key, value := y.Content[i], y.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return nil, &ModelError{
					Code:    ErrCodeStructure,
					File:    file,
					Field:   path,
					Message: "mapping keys must be scalars",
					Pos:     Pos{Line: key.Line, Column: key.Column},
				}
			}
			child, err := yamlNode(file, value, joinPath(path, key.Value))
			if err != nil {
				return nil, err
			}
			n.set(key.Value, child)
		}
		return n, nil

	case yaml.SequenceNode:
		n := &node{kind: nodeList, pos: pos}
		for _, item := range y.Content {
			child, err := yamlNode(file, item, path)
			if err != nil {
				return nil, err
			}
			n.items = append(n.items, child)
		}
		return n, nil

	case yaml.ScalarNode:
		switch y.ShortTag() {
		case "!!null":
			return &node{kind: nodeNull, pos: pos}, nil
		case "!!int":
			return &node{kind: nodeScalar, scalar: y.Value, stype: scalarInt, pos: pos}, nil
		case "!!str":
			return &node{kind: nodeScalar, scalar: y.Value, stype: scalarString, pos: pos}, nil
		default:
			return &node{kind: nodeScalar, scalar: y.Value, stype: scalarOther, pos: pos}, nil
		}

	default:
		return nil, &ModelError{
			Code:    ErrCodeStructure,
			File:    file,
			Field:   path,
			Message: "unsupported YAML node",
			Pos:     pos,
		}
	}
}
