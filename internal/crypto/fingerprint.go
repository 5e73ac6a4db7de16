package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a short hex fingerprint of public key bytes.
//
// It hashes with SHA-256 and truncates to 10 bytes (20 hex chars).
func Fingerprint(pub []byte) string {
	sum := sha256.Sum256(pub)
	return hex.EncodeToString(sum[:10])
}

// Fingerprint returns the fingerprint of the public coordinates of k.
func (k *PublicKey) Fingerprint() string {
	return Fingerprint(k.Bytes())
}
