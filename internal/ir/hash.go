package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content digests.
// Version suffix enables future algorithm migration.
const (
	DomainOutputFile = "francagen/output/v1"
	DomainModelFile  = "francagen/model/v1"
)

// Digest computes a SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func Digest(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// OutputDigest is the digest recorded for a generated file.
func OutputDigest(text string) string {
	return Digest(DomainOutputFile, []byte(text))
}
