package interfaces

import domaintypes "groscore/internal/domain/types"

// IdentityService creates and loads the local countersignature key.
type IdentityService interface {
	GenerateIdentity(passphrase string, alg int) (
		domaintypes.Identity,
		domaintypes.Fingerprint,
		error,
	)
	LoadIdentity(passphrase string) (domaintypes.Identity, error)
	FingerprintIdentity(passphrase string) (domaintypes.Fingerprint, error)
}

// SessionService protects and unprotects messages for one local endpoint.
type SessionService interface {
	Protect(msg *domaintypes.Message, key domaintypes.CorrelationKey) (*domaintypes.Message, error)
	Unprotect(msg *domaintypes.Message, key domaintypes.CorrelationKey) (*domaintypes.Message, error)
	Checkpoint() error
	Restore() error
	Close() error
}

// Handler produces a plaintext response for a plaintext request.
type Handler func(req *domaintypes.Message) *domaintypes.Message

// MessageService serves protected requests and renders failures as
// unprotected diagnostic responses.
type MessageService interface {
	Serve(peer domaintypes.CorrelationKey, req *domaintypes.Message, h Handler) *domaintypes.Message
	ErrorResponse(req *domaintypes.Message, err error) *domaintypes.Message
}
