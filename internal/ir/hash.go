package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content digests.
// Version suffix enables future algorithm migration.
const (
	DomainOutline = "folio/outline/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SourceDigest identifies outline text. Compiling the same text twice
// yields two Manifestations with the same digest.
//
// The digest covers the exact bytes, so a CRLF copy of an outline has a
// different digest than its LF original.
func SourceDigest(text string) string {
	return hashWithDomain(DomainOutline, []byte(text))
}
