package oscore

import (
	"sync"

	"groscore/internal/domain"
	"groscore/internal/protocol/secctx"
)

// Binding ties responses to the request that caused them. The requester
// keeps the one ProtectRequest returns; the responder the one from
// UnprotectRequest.
type Binding struct {
	Common *secctx.CommonContext
	Mode   domain.Mode
	KID    []byte // kid of the request
	PIV    []byte // partial IV of the request

	// Sender is the local sender of the request, set on the requester side.
	Sender *secctx.SenderContext
	// Peer is the requester as a recipient, set on the responder side.
	Peer *secctx.RecipientContext

	mu       sync.Mutex
	answered map[string]struct{} // responder kids seen without a partial IV
}

// claim records that responder kid answered under the request nonce. It
// reports false if kid already did.
func (b *Binding) claim(kid []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.answered[string(kid)]; ok {
		return false
	}
	if b.answered == nil {
		b.answered = make(map[string]struct{})
	}
	b.answered[string(kid)] = struct{}{}
	return true
}
