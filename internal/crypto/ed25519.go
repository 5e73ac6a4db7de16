package crypto

import (
	"crypto/ed25519"
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/katzenpost/hpqc/sign/schemes"

	"groscore/internal/cose"
	"groscore/internal/util/memzero"
)

var ed25519Scheme = schemes.ByName("Ed25519")

func generateEd25519() (*PrivateKey, error) {
	_, sk, err := ed25519Scheme.GenerateKey()
	if err != nil {
		return nil, err
	}
	full, err := sk.MarshalBinary()
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(full)
	return ed25519PrivateKey(full[:ed25519.SeedSize])
}

// ed25519PrivateKey expands an RFC 8032 seed, the COSE d parameter.
func ed25519PrivateKey(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: Ed25519 seed is %d bytes", ErrKeyMismatch, len(seed))
	}
	full := ed25519.NewKeyFromSeed(seed)
	defer memzero.Zero(full)

	sk, err := ed25519Scheme.UnmarshalBinaryPrivateKey(full)
	if err != nil {
		return nil, err
	}
	pub, err := ed25519PublicKey(full[ed25519.SeedSize:])
	if err != nil {
		return nil, err
	}
	return &PrivateKey{pub: *pub, ed: sk, d: append([]byte(nil), seed...)}, nil
}

func ed25519PublicKey(x []byte) (*PublicKey, error) {
	pk, err := ed25519Scheme.UnmarshalBinaryPublicKey(x)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyMismatch, err)
	}
	return &PublicKey{alg: cose.AlgEdDSA, ed: pk, x: append([]byte(nil), x...)}, nil
}

// ed25519ToX25519Private returns the clamped X25519 scalar behind an Ed25519
// seed (RFC 8032 section 5.1.5).
func ed25519ToX25519Private(seed []byte) []byte {
	h := sha512.Sum512(seed)
	s := append([]byte(nil), h[:32]...)
	memzero.Zero(h[:])
	clamp(s)
	return s
}

// ed25519ToX25519Public maps an Edwards point to its Montgomery u-coordinate.
func ed25519ToX25519Public(x []byte) ([]byte, error) {
	p, err := new(edwards25519.Point).SetBytes(x)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyMismatch, err)
	}
	return p.BytesMontgomery(), nil
}
