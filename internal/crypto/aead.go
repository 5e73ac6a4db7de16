package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/pion/dtls/v2/pkg/crypto/ccm"
	"golang.org/x/crypto/chacha20poly1305"

	"groscore/internal/cose"
)

// NewAEAD returns the cipher for alg keyed with key.
func NewAEAD(alg cose.Algorithm, key []byte) (cipher.AEAD, error) {
	p, ok := alg.AEAD()
	if !ok {
		return nil, fmt.Errorf("%w: %v is not an AEAD", cose.ErrUnsupportedAlgorithm, alg)
	}
	if len(key) != p.KeySize {
		return nil, fmt.Errorf("%v: key is %d bytes, want %d", alg, len(key), p.KeySize)
	}
	switch alg {
	case cose.AlgChaCha20Poly1305:
		return chacha20poly1305.New(key)
	case cose.AlgA128GCM, cose.AlgA256GCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	default:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return ccm.NewCCM(block, p.TagSize, p.NonceSize)
	}
}
