package identity

import (
	"fmt"
	"unicode"

	"groscore/internal/cose"
	"groscore/internal/crypto"
	"groscore/internal/domain"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	)
)

// Service manages the countersignature key using a backing store.
type Service struct {
	store domain.IdentityStore
}

// New returns an identity service backed by the given store.
func New(s domain.IdentityStore) *Service { return &Service{store: s} }

// GenerateIdentity creates a key pair for the COSE algorithm alg, saves it
// encrypted with the passphrase, and returns it with the fingerprint of the
// public key.
func (s *Service) GenerateIdentity(passphrase string, alg int) (domain.Identity, domain.Fingerprint, error) {
	if !isSecurePassphrase(passphrase) {
		return domain.Identity{}, "", ErrWeakPassphrase
	}

	priv, err := crypto.GenerateKey(cose.Algorithm(alg))
	if err != nil {
		return domain.Identity{}, "", err
	}
	raw, err := priv.COSE().MarshalBinary()
	if err != nil {
		return domain.Identity{}, "", err
	}
	id := domain.Identity{Algorithm: alg, Key: raw}
	if err := s.store.SaveIdentity(passphrase, id); err != nil {
		return domain.Identity{}, "", err
	}
	return id, domain.Fingerprint(priv.Public().Fingerprint()), nil
}

// LoadIdentity decrypts and returns the stored identity.
func (s *Service) LoadIdentity(passphrase string) (domain.Identity, error) {
	return s.store.LoadIdentity(passphrase)
}

// PrivateKey decrypts the identity and parses its signing key.
func (s *Service) PrivateKey(passphrase string) (*crypto.PrivateKey, error) {
	id, err := s.store.LoadIdentity(passphrase)
	if err != nil {
		return nil, err
	}
	return ParsePrivateKey(id)
}

// FingerprintIdentity returns the fingerprint of the stored public key.
func (s *Service) FingerprintIdentity(passphrase string) (domain.Fingerprint, error) {
	priv, err := s.PrivateKey(passphrase)
	if err != nil {
		return "", err
	}
	return domain.Fingerprint(priv.Public().Fingerprint()), nil
}

// ParsePrivateKey decodes the COSE_Key of id and checks it against the
// recorded algorithm.
func ParsePrivateKey(id domain.Identity) (*crypto.PrivateKey, error) {
	k, err := cose.DecodeKey(id.Key)
	if err != nil {
		return nil, err
	}
	priv, err := crypto.PrivateKeyFromCOSE(k)
	if err != nil {
		return nil, err
	}
	if int(priv.Algorithm()) != id.Algorithm {
		return nil, fmt.Errorf("identity: stored algorithm %d, key is %v", id.Algorithm, priv.Algorithm())
	}
	return priv, nil
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len(passphrase) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
