package secctx

import (
	"sync"

	"groscore/internal/crypto"
	"groscore/internal/domain"
)

// MaxSequenceNumber is the largest sequence number a 5 byte partial IV holds.
const MaxSequenceNumber = 1<<40 - 1

// SenderContext is one local identity in a group.
type SenderContext struct {
	common *CommonContext
	id     []byte
	key    []byte
	priv   *crypto.PrivateKey

	mu  sync.Mutex
	seq uint64
}

// Common returns the owning group context.
func (s *SenderContext) Common() *CommonContext { return s.common }

// ID returns the sender identifier.
func (s *SenderContext) ID() domain.ID { return append(domain.ID{}, s.id...) }

// Key returns the group sender key.
func (s *SenderContext) Key() []byte { return s.key }

// PrivateKey returns the countersignature key.
func (s *SenderContext) PrivateKey() *crypto.PrivateKey { return s.priv }

// NextSequenceNumber hands out the current sequence number and advances it.
// A number is never handed out twice, whatever happens to the message.
func (s *SenderContext) NextSequenceNumber() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq > MaxSequenceNumber {
		return 0, configErr("sender %x exhausted its sequence numbers", s.id)
	}
	n := s.seq
	s.seq++
	return n, nil
}

// SequenceNumber returns the next number NextSequenceNumber would hand out.
func (s *SenderContext) SequenceNumber() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// SetSequenceNumber forces the counter to n. Receivers keep their own replay
// state, so reusing an old number this way gets the message rejected.
func (s *SenderContext) SetSequenceNumber(n uint64) {
	s.mu.Lock()
	s.seq = n
	s.mu.Unlock()
}

// RestoreSequenceNumber moves the counter forward to n; it never moves back.
func (s *SenderContext) RestoreSequenceNumber(n uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= s.seq {
		return false
	}
	s.seq = n
	return true
}

// State returns the persisted form.
func (s *SenderContext) State() domain.SenderState {
	return domain.SenderState{Sequence: s.SequenceNumber()}
}
