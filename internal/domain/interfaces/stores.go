package interfaces

import domaintypes "groscore/internal/domain/types"

// IdentityStore persists the local countersignature key, encrypted at rest.
type IdentityStore interface {
	SaveIdentity(passphrase string, id domaintypes.Identity) error
	LoadIdentity(passphrase string) (domaintypes.Identity, error)
}

// StateStore persists sequence numbers and replay windows across restarts.
// Entries are addressed by group identifier and role identifier.
type StateStore interface {
	SaveSender(group, sender domaintypes.ID, st domaintypes.SenderState) error
	LoadSender(group, sender domaintypes.ID) (domaintypes.SenderState, bool, error)
	SaveWindow(group, recipient domaintypes.ID, st domaintypes.WindowState) error
	LoadWindow(group, recipient domaintypes.ID) (domaintypes.WindowState, bool, error)
	Close() error
}
