package cose

import (
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"slices"
	"strconv"
	"strings"
)

// Algorithm is a COSE algorithm identifier.
type Algorithm int

const (
	AlgA128GCM          Algorithm = 1
	AlgA256GCM          Algorithm = 3
	AlgAESCCM16_64_128  Algorithm = 10
	AlgAESCCM16_64_256  Algorithm = 11
	AlgChaCha20Poly1305 Algorithm = 24
	AlgAESCCM16_128_128 Algorithm = 30

	AlgES256      Algorithm = -7
	AlgEdDSA      Algorithm = -8
	AlgHKDFSHA256 Algorithm = -10
	AlgHKDFSHA512 Algorithm = -11
)

// KeyType is a COSE key type (kty).
type KeyType int

const (
	KeyTypeOKP KeyType = 1
	KeyTypeEC2 KeyType = 2
)

// Curve is a COSE elliptic curve identifier (crv).
type Curve int

const (
	CurveP256    Curve = 1
	CurveX25519  Curve = 4
	CurveEd25519 Curve = 6
)

var (
	ErrUnsupportedAlgorithm = errors.New("unsupported COSE algorithm")
	ErrCapabilityMismatch   = errors.New("countersignature capabilities do not match algorithm")
)

var algNames = map[Algorithm]string{
	AlgA128GCM:          "A128GCM",
	AlgA256GCM:          "A256GCM",
	AlgAESCCM16_64_128:  "AES-CCM-16-64-128",
	AlgAESCCM16_64_256:  "AES-CCM-16-64-256",
	AlgChaCha20Poly1305: "ChaCha20/Poly1305",
	AlgAESCCM16_128_128: "AES-CCM-16-128-128",
	AlgES256:            "ES256",
	AlgEdDSA:            "EdDSA",
	AlgHKDFSHA256:       "HKDF-SHA-256",
	AlgHKDFSHA512:       "HKDF-SHA-512",
}

func (a Algorithm) String() string {
	if n, ok := algNames[a]; ok {
		return n
	}
	return "alg(" + strconv.Itoa(int(a)) + ")"
}

// ParseAlgorithm accepts a registered name (case insensitive) or a decimal
// COSE identifier.
func ParseAlgorithm(s string) (Algorithm, error) {
	for a, n := range algNames {
		if strings.EqualFold(n, s) {
			return a, nil
		}
	}
	if v, err := strconv.Atoi(s); err == nil {
		if _, ok := algNames[Algorithm(v)]; ok {
			return Algorithm(v), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
}

// AEADParams describes the sizes an AEAD algorithm works with.
type AEADParams struct {
	KeySize   int
	NonceSize int
	TagSize   int
}

// AEAD returns the parameters of an AEAD algorithm.
func (a Algorithm) AEAD() (AEADParams, bool) {
	switch a {
	case AlgAESCCM16_64_128:
		return AEADParams{KeySize: 16, NonceSize: 13, TagSize: 8}, true
	case AlgAESCCM16_64_256:
		return AEADParams{KeySize: 32, NonceSize: 13, TagSize: 8}, true
	case AlgAESCCM16_128_128:
		return AEADParams{KeySize: 16, NonceSize: 13, TagSize: 16}, true
	case AlgA128GCM:
		return AEADParams{KeySize: 16, NonceSize: 12, TagSize: 16}, true
	case AlgA256GCM:
		return AEADParams{KeySize: 32, NonceSize: 12, TagSize: 16}, true
	case AlgChaCha20Poly1305:
		return AEADParams{KeySize: 32, NonceSize: 12, TagSize: 16}, true
	}
	return AEADParams{}, false
}

// Hash returns the hash function behind an HKDF algorithm.
func (a Algorithm) Hash() (func() hash.Hash, bool) {
	switch a {
	case AlgHKDFSHA256:
		return sha256.New, true
	case AlgHKDFSHA512:
		return sha512.New, true
	}
	return nil, false
}

// KeyParams returns the key type and curve a signature algorithm signs with.
func (a Algorithm) KeyParams() (KeyType, Curve, bool) {
	switch a {
	case AlgEdDSA:
		return KeyTypeOKP, CurveEd25519, true
	case AlgES256:
		return KeyTypeEC2, CurveP256, true
	}
	return 0, 0, false
}

// SignatureSize is the length of a raw signature produced by a.
func (a Algorithm) SignatureSize() int {
	switch a {
	case AlgEdDSA, AlgES256:
		return 64
	}
	return 0
}

// CountersignParams is par_countersign: the algorithm capabilities followed
// by the key type capabilities.
type CountersignParams struct {
	AlgCapab     []int
	KeyTypeCapab []int
}

// DefaultCountersignParams returns par_countersign and par_countersign_key
// for a signature algorithm.
func DefaultCountersignParams(alg Algorithm) (CountersignParams, []int, error) {
	kty, crv, ok := alg.KeyParams()
	if !ok {
		return CountersignParams{}, nil, fmt.Errorf("%w: %v cannot countersign", ErrUnsupportedAlgorithm, alg)
	}
	return CountersignParams{
		AlgCapab:     []int{int(kty)},
		KeyTypeCapab: []int{int(kty), int(crv)},
	}, []int{int(kty), int(crv)}, nil
}

// ValidateCountersign checks that the capability descriptors agree with the
// declared signature algorithm.
func ValidateCountersign(alg Algorithm, par CountersignParams, parKey []int) error {
	want, wantKey, err := DefaultCountersignParams(alg)
	if err != nil {
		return err
	}
	switch {
	case !slices.Equal(par.AlgCapab, want.AlgCapab):
		return fmt.Errorf("%w: alg capab %v, want %v", ErrCapabilityMismatch, par.AlgCapab, want.AlgCapab)
	case !slices.Equal(par.KeyTypeCapab, want.KeyTypeCapab):
		return fmt.Errorf("%w: key type capab %v, want %v", ErrCapabilityMismatch, par.KeyTypeCapab, want.KeyTypeCapab)
	case !slices.Equal(parKey, wantKey):
		return fmt.Errorf("%w: key params %v, want %v", ErrCapabilityMismatch, parKey, wantKey)
	}
	return nil
}
