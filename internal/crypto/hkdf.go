package crypto

import (
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"groscore/internal/cose"
)

// HKDF derives length bytes with the hash behind alg.
func HKDF(alg cose.Algorithm, salt, ikm, info []byte, length int) ([]byte, error) {
	h, ok := alg.Hash()
	if !ok {
		return nil, fmt.Errorf("%w: %v is not a KDF", cose.ErrUnsupportedAlgorithm, alg)
	}
	out := make([]byte, length)
	if _, err := io.ReadFull(hkdf.New(h, ikm, salt, info), out); err != nil {
		return nil, err
	}
	return out, nil
}
