package crypto

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/katzenpost/hpqc/sign"

	"groscore/internal/cose"
)

var (
	ErrKeyMismatch = errors.New("COSE_Key parameters do not match its algorithm")
	errNotPrivate  = errors.New("COSE_Key carries no private parameter")
)

// PublicKey is a countersignature verification key.
type PublicKey struct {
	alg  cose.Algorithm
	ed   sign.PublicKey
	ec   *ecdsa.PublicKey
	x, y []byte
}

// PrivateKey is a countersignature signing key together with its public half.
type PrivateKey struct {
	pub PublicKey
	ed  sign.PrivateKey
	ec  *ecdsa.PrivateKey
	d   []byte
}

// GenerateKey creates a fresh key pair for the signature algorithm alg.
func GenerateKey(alg cose.Algorithm) (*PrivateKey, error) {
	switch alg {
	case cose.AlgEdDSA:
		return generateEd25519()
	case cose.AlgES256:
		return generateP256()
	}
	return nil, fmt.Errorf("%w: %v cannot countersign", cose.ErrUnsupportedAlgorithm, alg)
}

// algorithmOf returns the signature algorithm a COSE_Key is meant for,
// inferring it from kty and crv when the key omits alg.
func algorithmOf(k *cose.Key) (cose.Algorithm, error) {
	var inferred cose.Algorithm
	switch {
	case k.KeyType == cose.KeyTypeOKP && k.Curve == cose.CurveEd25519:
		inferred = cose.AlgEdDSA
	case k.KeyType == cose.KeyTypeEC2 && k.Curve == cose.CurveP256:
		inferred = cose.AlgES256
	default:
		return 0, fmt.Errorf("%w: kty %d crv %d", ErrKeyMismatch, k.KeyType, k.Curve)
	}
	if k.Algorithm != 0 && k.Algorithm != inferred {
		return 0, fmt.Errorf("%w: alg %v on a %v key", ErrKeyMismatch, k.Algorithm, inferred)
	}
	return inferred, nil
}

// PublicKeyFromCOSE builds a verification key from a COSE_Key. Private
// parameters, if present, are ignored.
func PublicKeyFromCOSE(k *cose.Key) (*PublicKey, error) {
	alg, err := algorithmOf(k)
	if err != nil {
		return nil, err
	}
	if alg == cose.AlgEdDSA {
		return ed25519PublicKey(k.X)
	}
	return p256PublicKey(k.X, k.Y)
}

// PrivateKeyFromCOSE builds a signing key from a COSE_Key carrying d. The
// public coordinates in the key must match the ones derived from d.
func PrivateKeyFromCOSE(k *cose.Key) (*PrivateKey, error) {
	if !k.IsPrivate() {
		return nil, errNotPrivate
	}
	alg, err := algorithmOf(k)
	if err != nil {
		return nil, err
	}
	var priv *PrivateKey
	if alg == cose.AlgEdDSA {
		priv, err = ed25519PrivateKey(k.D)
	} else {
		priv, err = p256PrivateKey(k.D)
	}
	if err != nil {
		return nil, err
	}
	if len(k.X) > 0 && !Equal(k.X, priv.pub.x) || len(k.Y) > 0 && !Equal(k.Y, priv.pub.y) {
		return nil, fmt.Errorf("%w: public coordinates do not belong to d", ErrKeyMismatch)
	}
	return priv, nil
}

// Algorithm returns the signature algorithm.
func (k *PublicKey) Algorithm() cose.Algorithm { return k.alg }

// Params returns the COSE key type and curve.
func (k *PublicKey) Params() (cose.KeyType, cose.Curve) {
	kty, crv, _ := k.alg.KeyParams()
	return kty, crv
}

// Bytes returns x for Ed25519 and x||y for P-256.
func (k *PublicKey) Bytes() []byte {
	return append(append([]byte(nil), k.x...), k.y...)
}

// Equal reports whether k and o are the same key.
func (k *PublicKey) Equal(o *PublicKey) bool {
	return o != nil && k.alg == o.alg && Equal(k.Bytes(), o.Bytes())
}

// COSE exports k as a public COSE_Key.
func (k *PublicKey) COSE() *cose.Key {
	kty, crv := k.Params()
	out := &cose.Key{KeyType: kty, Algorithm: k.alg, Curve: crv, X: append([]byte(nil), k.x...)}
	if k.y != nil {
		out.Y = append([]byte(nil), k.y...)
	}
	return out
}

// Verify checks sig over msg.
func (k *PublicKey) Verify(msg, sig []byte) bool {
	if len(sig) != k.alg.SignatureSize() {
		return false
	}
	if k.alg == cose.AlgEdDSA {
		return ed25519Scheme.Verify(k.ed, msg, sig, nil)
	}
	return p256Verify(k.ec, msg, sig)
}

// Public returns the verification half of k.
func (k *PrivateKey) Public() *PublicKey {
	pub := k.pub
	return &pub
}

// Algorithm returns the signature algorithm.
func (k *PrivateKey) Algorithm() cose.Algorithm { return k.pub.alg }

// COSE exports k as a COSE_Key including d.
func (k *PrivateKey) COSE() *cose.Key {
	out := k.pub.COSE()
	out.D = append([]byte(nil), k.d...)
	return out
}

// Sign produces a raw countersignature over msg.
func (k *PrivateKey) Sign(msg []byte) ([]byte, error) {
	if k.pub.alg == cose.AlgEdDSA {
		return ed25519Scheme.Sign(k.ed, msg, nil), nil
	}
	return p256Sign(k.ec, msg)
}
