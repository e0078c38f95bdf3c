package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed fingerprints.
// Version suffix enables future algorithm migration.
const (
	DomainConstraint = "querymix/constraint/v1"
	DomainQuery      = "querymix/query/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes a stable identifier for a canonical JSON-able value
// (typically the canonical form of a compiled constraint).
// Two structurally equal constraints produce the same fingerprint.
func Fingerprint(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// QueryFingerprint identifies a raw query string compiled against an entity.
func QueryFingerprint(entity, query string) string {
	fp, _ := Fingerprint(DomainQuery, IRObject{
		"entity": IRString(entity),
		"query":  IRString(query),
	})
	return fp
}
