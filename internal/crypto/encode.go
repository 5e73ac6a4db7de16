package crypto

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// B64 returns standard base64 encoding without newlines.
func B64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

// Hex returns lowercase hex.
func Hex(b []byte) string { return hex.EncodeToString(b) }

// DecodeBytes accepts hex, optionally prefixed with "0x", or "b64:" followed
// by standard base64. The empty string decodes to an empty, non-nil slice.
func DecodeBytes(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "b64:"); ok {
		return base64.StdEncoding.DecodeString(rest)
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", s, err)
	}
	return b, nil
}

// Equal compares a and b in constant time.
func Equal(a, b []byte) bool { return subtle.ConstantTimeCompare(a, b) == 1 }
