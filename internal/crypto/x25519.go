package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/curve25519"

	"groscore/internal/cose"
	"groscore/internal/util/memzero"
)

var errAlgorithmMismatch = errors.New("ECDH between keys of different algorithms")

// SharedSecret computes the static-static ECDH secret between a local
// countersignature key and a peer's public key. Ed25519 keys are mapped to
// X25519; P-256 keys are used directly.
func SharedSecret(priv *PrivateKey, pub *PublicKey) ([]byte, error) {
	if priv.pub.alg != pub.alg {
		return nil, errAlgorithmMismatch
	}
	if pub.alg == cose.AlgES256 {
		a, err := priv.ec.ECDH()
		if err != nil {
			return nil, err
		}
		b, err := pub.ec.ECDH()
		if err != nil {
			return nil, err
		}
		return a.ECDH(b)
	}

	scalar := ed25519ToX25519Private(priv.d)
	defer memzero.Zero(scalar)
	u, err := ed25519ToX25519Public(pub.x)
	if err != nil {
		return nil, err
	}
	out, err := curve25519.X25519(scalar, u)
	if err != nil {
		return nil, fmt.Errorf("x25519: %w", err)
	}
	return out, nil
}

func clamp(k []byte) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}
