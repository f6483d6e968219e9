package model

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize prepares raw model input for parsing: a leading byte order mark
// selects the decoding (UTF-8 without one) and is dropped, the text is put in
// Unicode NFC, and CRLF line endings become LF.
func Normalize(data []byte) ([]byte, error) {
	t := transform.Chain(unicode.BOMOverride(unicode.UTF8.NewDecoder()), norm.NFC)
	out, _, err := transform.Bytes(t, data)
	if err != nil {
		return nil, errors.Wrap(err, "normalizing input")
	}
	return bytes.ReplaceAll(out, []byte("\r\n"), []byte("\n")), nil
}
