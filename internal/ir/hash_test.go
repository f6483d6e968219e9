package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigestDeterminism(t *testing.T) {
	d1 := Digest(DomainOutputFile, []byte("struct A {};"))
	d2 := Digest(DomainOutputFile, []byte("struct A {};"))

	assert.Equal(t, d1, d2, "Digest must be deterministic")
	assert.Len(t, d1, 64, "SHA-256 hex is 64 characters")
}

func TestDigestDomainSeparation(t *testing.T) {
	data := []byte("struct A {};")

	assert.NotEqual(t, Digest(DomainOutputFile, data), Digest(DomainModelFile, data),
		"Different domains must produce different digests")
}

func TestDigestBoundaryAmbiguity(t *testing.T) {
	// "ab" + sep + "c" must differ from "a" + sep + "bc"
	assert.NotEqual(t, Digest("ab", []byte("c")), Digest("a", []byte("bc")))
}

func TestOutputDigest(t *testing.T) {
	assert.Equal(t, Digest(DomainOutputFile, []byte("x")), OutputDigest("x"))
	assert.NotEqual(t, OutputDigest("x"), OutputDigest("y"))
}
