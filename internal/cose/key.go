package cose

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

var ErrInvalidKey = errors.New("invalid COSE_Key")

// Key is a COSE_Key map restricted to the OKP and EC2 parameters.
type Key struct {
	KeyType   KeyType   `cbor:"1,keyasint"`
	KeyID     []byte    `cbor:"2,keyasint,omitempty"`
	Algorithm Algorithm `cbor:"3,keyasint,omitempty"`
	Curve     Curve     `cbor:"-1,keyasint,omitempty"`
	X         []byte    `cbor:"-2,keyasint,omitempty"`
	Y         []byte    `cbor:"-3,keyasint,omitempty"`
	D         []byte    `cbor:"-4,keyasint,omitempty"`
}

// DecodeKey parses a CBOR encoded COSE_Key.
func DecodeKey(b []byte) (*Key, error) {
	var k Key
	if err := cbor.Unmarshal(b, (*rawKey)(&k)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if err := k.check(); err != nil {
		return nil, err
	}
	return &k, nil
}

// ParseKey decodes a COSE_Key given as base64 (standard or URL alphabet) or hex.
func ParseKey(s string) (*Key, error) {
	s = strings.TrimSpace(s)
	if b, err := hex.DecodeString(s); err == nil {
		return DecodeKey(b)
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if b, err := enc.DecodeString(s); err == nil {
			return DecodeKey(b)
		}
	}
	return nil, fmt.Errorf("%w: neither hex nor base64", ErrInvalidKey)
}

func (k *Key) check() error {
	switch k.KeyType {
	case KeyTypeOKP:
		if k.Curve != CurveEd25519 || len(k.X) != 32 {
			return fmt.Errorf("%w: OKP key must be Ed25519 with 32 byte x", ErrInvalidKey)
		}
		if k.D != nil && len(k.D) != 32 {
			return fmt.Errorf("%w: Ed25519 d must be 32 bytes", ErrInvalidKey)
		}
	case KeyTypeEC2:
		if k.Curve != CurveP256 || len(k.X) != 32 || len(k.Y) != 32 {
			return fmt.Errorf("%w: EC2 key must be P-256 with 32 byte x and y", ErrInvalidKey)
		}
		if k.D != nil && len(k.D) != 32 {
			return fmt.Errorf("%w: P-256 d must be 32 bytes", ErrInvalidKey)
		}
	default:
		return fmt.Errorf("%w: unsupported kty %d", ErrInvalidKey, k.KeyType)
	}
	return nil
}

// rawKey has Key's fields without its methods, so cbor does not call back
// into MarshalBinary.
type rawKey Key

// MarshalBinary returns the CBOR encoding of k.
func (k *Key) MarshalBinary() ([]byte, error) { return cbor.Marshal((*rawKey)(k)) }

// String returns the standard base64 of the CBOR encoding.
func (k *Key) String() string {
	b, err := k.MarshalBinary()
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(b)
}

// IsPrivate reports whether k carries the private parameter d.
func (k *Key) IsPrivate() bool { return len(k.D) > 0 }

// Public returns a copy of k without d.
func (k *Key) Public() *Key {
	out := *k
	out.D = nil
	return &out
}
