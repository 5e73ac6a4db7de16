package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"groscore/internal/domain"
)

// IdentityFilename is the sealed countersignature key inside a home directory.
const IdentityFilename = "identity.cbor.enc"

// ErrNoIdentity is returned when no key has been generated yet.
var ErrNoIdentity = errors.New("no identity key; run keygen first")

// IdentityFileStore persists the local countersignature key to disk.
type IdentityFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewIdentityFileStore returns an IdentityFileStore rooted at dir.
func NewIdentityFileStore(dir string) *IdentityFileStore {
	return &IdentityFileStore{dir: dir}
}

// SaveIdentity seals id with passphrase and writes it to disk.
func (s *IdentityFileStore) SaveIdentity(passphrase string, id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := cbor.Marshal(id)
	if err != nil {
		return err
	}
	ct, err := seal(passphrase, raw)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return writeFile(filepath.Join(s.dir, IdentityFilename), ct, 0o600)
}

// LoadIdentity reads and unseals the identity.
func (s *IdentityFileStore) LoadIdentity(passphrase string) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(filepath.Join(s.dir, IdentityFilename))
	if err != nil {
		return domain.Identity{}, err
	}
	if b == nil {
		return domain.Identity{}, ErrNoIdentity
	}
	pt, err := unseal(passphrase, b)
	if err != nil {
		return domain.Identity{}, err
	}
	var id domain.Identity
	if err := cbor.Unmarshal(pt, &id); err != nil {
		return domain.Identity{}, fmt.Errorf("store: decode identity: %w", err)
	}
	return id, nil
}

// Compile-time assertion that IdentityFileStore implements domain.IdentityStore.
var _ domain.IdentityStore = (*IdentityFileStore)(nil)
