package model

import (
	"fmt"
)

// Error codes for model loading.
const (
	ErrCodeRead       = "E201" // file could not be read or decoded
	ErrCodeSyntax     = "E202" // CUE or YAML syntax or evaluation error
	ErrCodeStructure  = "E203" // value has the wrong shape
	ErrCodeType       = "E204" // malformed type expression
	ErrCodeVersion    = "E205" // malformed container version
	ErrCodeFormat     = "E206" // unsupported file extension
	ErrCodeNoPackages = "E207" // document declares no packages
	ErrCodeEnumerator = "E208" // enumerator value is not null, int or string
	ErrCodeUnknownKey = "E209" // unknown key in a package or container
)

// ModelError describes a problem in one model file.
type ModelError struct {
	Code    string
	File    string
	Field   string // dotted path of the offending value, if known
	Message string
	Pos     Pos
}

func (e *ModelError) Error() string {
	loc := e.File
	if e.Pos.Line > 0 {
		loc = fmt.Sprintf("%s:%d:%d", e.File, e.Pos.Line, e.Pos.Column)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s: %s", loc, e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Code, e.Message)
}

// Pos is a 1-based source position. The zero value means unknown.
type Pos struct {
	Line   int
	Column int
}
