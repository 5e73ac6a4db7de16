package secctx

import (
	"errors"
	"sync"

	"groscore/internal/crypto"
	"groscore/internal/domain"
	"groscore/internal/protocol/kdf"
	"groscore/internal/protocol/replay"
	"groscore/internal/util/memzero"
)

var ErrNoPublicKey = errors.New("no public key registered for recipient")

type pairwiseKeys struct {
	sender    []byte // local sender toward this recipient
	recipient []byte // this recipient toward the local sender
}

// RecipientContext is one remote peer as seen from a group.
type RecipientContext struct {
	common *CommonContext
	id     []byte
	key    []byte

	mu       sync.Mutex
	pub      *crypto.PublicKey
	window   *replay.Window
	pairwise map[string]pairwiseKeys // by local sender id
}

// Common returns the owning group context.
func (r *RecipientContext) Common() *CommonContext { return r.common }

// ID returns the recipient identifier.
func (r *RecipientContext) ID() domain.ID { return append(domain.ID{}, r.id...) }

// Key returns the group recipient key.
func (r *RecipientContext) Key() []byte { return r.key }

// PublicKey returns the peer's countersignature key, or nil.
func (r *RecipientContext) PublicKey() *crypto.PublicKey {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pub
}

func (r *RecipientContext) setPublicKey(pub *crypto.PublicKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pub = pub
	for k, p := range r.pairwise {
		memzero.ZeroAll(p.sender, p.recipient)
		delete(r.pairwise, k)
	}
}

// PairwiseKeys returns the pairwise keys between the local sender s and this
// peer, deriving and caching them on first use.
func (r *RecipientContext) PairwiseKeys(s *SenderContext) (send, recv []byte, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.pairwise[string(s.id)]; ok {
		return p.sender, p.recipient, nil
	}
	if r.pub == nil {
		return nil, nil, ErrNoPublicKey
	}

	shared, err := crypto.SharedSecret(s.priv, r.pub)
	if err != nil {
		return nil, nil, err
	}
	defer memzero.Zero(shared)

	own, peer := s.priv.Public().Bytes(), r.pub.Bytes()
	params := r.common.params
	if send, err = kdf.Pairwise(params, s.id, s.key, shared, own, peer); err != nil {
		return nil, nil, err
	}
	if recv, err = kdf.Pairwise(params, r.id, r.key, shared, peer, own); err != nil {
		return nil, nil, err
	}
	r.pairwise[string(s.id)] = pairwiseKeys{sender: send, recipient: recv}
	return send, recv, nil
}

// CheckSequence reports whether seq would pass the replay window.
func (r *RecipientContext) CheckSequence(seq uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.window.Check(seq)
}

// AcceptSequence runs the replay check for seq and commits it. Call it only
// after the message carrying seq has been verified and decrypted.
func (r *RecipientContext) AcceptSequence(seq uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.window.Accept(seq)
}

// WindowState returns the persisted form of the replay window.
func (r *RecipientContext) WindowState() domain.WindowState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.window.State()
}

// RestoreWindow loads a persisted window unless it is older than the current one.
func (r *RecipientContext) RestoreWindow(st domain.WindowState) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.window.Restore(st)
}
