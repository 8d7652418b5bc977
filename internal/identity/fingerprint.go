package identity

import (
	"encoding/hex"
	"fmt"
	"regexp"

	"golang.org/x/crypto/blake2b"
)

// VisitorIDHeader carries the client-computed device id (FingerprintJS visitorId).
const VisitorIDHeader = "X-Visitor-Id"

var visitorIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{8,128}$`)

// HeaderFingerprinter derives a stored fingerprint from a client visitor id.
// The visitor id is hashed with a server key so raw device ids never reach
// the ledger tables.
type HeaderFingerprinter struct {
	key       []byte
	visitorID string
}

// NewFingerprintKey turns an arbitrary secret into a BLAKE2b key.
func NewFingerprintKey(secret string) []byte {
	if secret == "" {
		return nil
	}
	sum := blake2b.Sum256([]byte(secret))
	return sum[:]
}

func NewHeaderFingerprinter(key []byte, visitorID string) *HeaderFingerprinter {
	return &HeaderFingerprinter{key: key, visitorID: visitorID}
}

func (f *HeaderFingerprinter) Fingerprint() (string, error) {
	if f.visitorID == "" {
		return "", fmt.Errorf("missing %s header", VisitorIDHeader)
	}
	if !visitorIDPattern.MatchString(f.visitorID) {
		return "", fmt.Errorf("malformed %s header", VisitorIDHeader)
	}

	h, err := blake2b.New256(f.key)
	if err != nil {
		return "", fmt.Errorf("creating fingerprint hash: %w", err)
	}
	h.Write([]byte(f.visitorID))
	return hex.EncodeToString(h.Sum(nil)), nil
}
