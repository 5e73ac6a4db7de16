package crypto

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"

	"groscore/internal/cose"
)

const p256CoordSize = 32

func generateP256() (*PrivateKey, error) {
	k, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return p256PrivateKey(k.D.FillBytes(make([]byte, p256CoordSize)))
}

func p256PrivateKey(d []byte) (*PrivateKey, error) {
	ek, err := ecdh.P256().NewPrivateKey(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyMismatch, err)
	}
	// Uncompressed point: 0x04 || x || y.
	point := ek.PublicKey().Bytes()
	pub, err := p256PublicKey(point[1:1+p256CoordSize], point[1+p256CoordSize:])
	if err != nil {
		return nil, err
	}
	sk := &ecdsa.PrivateKey{PublicKey: *pub.ec, D: new(big.Int).SetBytes(d)}
	return &PrivateKey{pub: *pub, ec: sk, d: append([]byte(nil), d...)}, nil
}

func p256PublicKey(x, y []byte) (*PublicKey, error) {
	point := append(append([]byte{4}, x...), y...)
	if _, err := ecdh.P256().NewPublicKey(point); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyMismatch, err)
	}
	pk := &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(x),
		Y:     new(big.Int).SetBytes(y),
	}
	return &PublicKey{
		alg: cose.AlgES256,
		ec:  pk,
		x:   append([]byte(nil), x...),
		y:   append([]byte(nil), y...),
	}, nil
}

// p256Sign returns the fixed-width r||s form COSE uses.
func p256Sign(k *ecdsa.PrivateKey, msg []byte) ([]byte, error) {
	digest := sha256.Sum256(msg)
	r, s, err := ecdsa.Sign(rand.Reader, k, digest[:])
	if err != nil {
		return nil, err
	}
	sig := make([]byte, 2*p256CoordSize)
	r.FillBytes(sig[:p256CoordSize])
	s.FillBytes(sig[p256CoordSize:])
	return sig, nil
}

func p256Verify(k *ecdsa.PublicKey, msg, sig []byte) bool {
	digest := sha256.Sum256(msg)
	r := new(big.Int).SetBytes(sig[:p256CoordSize])
	s := new(big.Int).SetBytes(sig[p256CoordSize:])
	return ecdsa.Verify(k, digest[:], r, s)
}
