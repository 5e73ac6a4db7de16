package session

import (
	"errors"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/op/go-logging.v1"

	"groscore/internal/ctxdb"
	"groscore/internal/domain"
	"groscore/internal/instrument"
	"groscore/internal/log"
	"groscore/internal/protocol/oscore"
	"groscore/internal/protocol/secctx"
)

// DefaultExchanges bounds the number of open request/response bindings.
const DefaultExchanges = 1024

var errClosed = errors.New("session closed")

// exchangeKey addresses one binding. Outbound marks requests sent by this
// endpoint, whose responses are still to be unprotected.
type exchangeKey struct {
	peer     domain.CorrelationKey
	token    string
	outbound bool
}

// Option configures a Service.
type Option func(*Service)

// WithStateStore persists counters and windows through st on Checkpoint and
// loads them on Restore.
func WithStateStore(st domain.StateStore) Option {
	return func(s *Service) { s.state = st }
}

// WithLogBackend sends the service log to b.
func WithLogBackend(b *log.Backend) Option {
	return func(s *Service) { s.log = b.GetLogger("session") }
}

// WithExchanges sets the capacity of the binding cache.
func WithExchanges(n int) Option {
	return func(s *Service) { s.capacity = n }
}

// WithSequenceReserve makes Checkpoint record each sequence number n ahead
// of its current value, so numbers used after the last checkpoint are
// skipped rather than reused after a crash.
func WithSequenceReserve(n uint64) Option {
	return func(s *Service) { s.reserve = n }
}

// Service protects and unprotects messages for one local endpoint.
type Service struct {
	db        *ctxdb.DB
	exchanges *lru.Cache[exchangeKey, *oscore.Binding]
	state     domain.StateStore
	log       *logging.Logger
	capacity  int
	reserve   uint64
	closed    atomic.Bool
}

// New returns a Service over db.
func New(db *ctxdb.DB, opts ...Option) (*Service, error) {
	s := &Service{db: db, capacity: DefaultExchanges}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = log.NewDiscard().GetLogger("session")
	}
	cache, err := lru.New[exchangeKey, *oscore.Binding](s.capacity)
	if err != nil {
		return nil, fmt.Errorf("session: exchange cache: %w", err)
	}
	s.exchanges = cache
	db.Range(func(c *secctx.CommonContext) bool {
		s.watch(c)
		return true
	})
	return s, nil
}

// Add registers c under key. Recipients that c derives later get their
// persisted replay window back before first use.
func (s *Service) Add(key domain.CorrelationKey, c *secctx.CommonContext) {
	s.watch(c)
	s.db.Add(key, c)
}

// DB returns the context database.
func (s *Service) DB() *ctxdb.DB { return s.db }

func (s *Service) watch(c *secctx.CommonContext) {
	c.OnAdopt(func(r *secctx.RecipientContext) {
		instrument.RecipientDerived()
		s.log.Noticef("group %s: created recipient context for %s", c.IDContext(), r.ID())
	})
	c.OnDerive(func(r *secctx.RecipientContext) {
		if s.state == nil {
			return
		}
		st, ok, err := s.state.LoadWindow(c.IDContext(), r.ID())
		if err != nil {
			s.log.Warningf("group %s: loading window of %s: %v", c.IDContext(), r.ID(), err)
			return
		}
		if ok {
			if _, err := r.RestoreWindow(st); err != nil {
				s.log.Warningf("group %s: restoring window of %s: %v", c.IDContext(), r.ID(), err)
			}
		}
	})
}

// Protect secures msg for the peer or request URI key. Requests are
// protected with the default sender of the context registered under key;
// msg.Target selects a pairwise recipient. Responses must answer a request
// previously unprotected under the same key and token.
func (s *Service) Protect(msg *domain.Message, key domain.CorrelationKey) (*domain.Message, error) {
	if s.closed.Load() {
		return nil, errClosed
	}
	if msg.Code.IsRequest() {
		return s.protectRequest(msg, key)
	}

	// The binding is claimed before sealing: a second response to the same
	// request would reuse the request nonce.
	ek := exchangeKey{peer: key, token: string(msg.Token)}
	b, ok := s.exchanges.Peek(ek)
	if !ok || !s.exchanges.Remove(ek) {
		return nil, domain.Errorf(domain.KindContextNotFound, "no request from %q with token %x", key, msg.Token)
	}
	out, err := oscore.ProtectResponse(b, msg)
	if err != nil {
		s.exchanges.ContainsOrAdd(ek, b)
		return nil, err
	}
	s.updateExchanges()
	instrument.Protected(responseMode(out))
	return out, nil
}

func (s *Service) protectRequest(msg *domain.Message, key domain.CorrelationKey) (*domain.Message, error) {
	c, err := s.db.Lookup(key)
	if err != nil {
		return nil, err
	}
	sender, err := c.Sender()
	if err != nil {
		return nil, err
	}
	var target *secctx.RecipientContext
	if msg.Target != nil {
		r, ok := c.Recipient(msg.Target)
		if !ok {
			return nil, domain.Errorf(domain.KindContextNotFound, "no recipient %s in group %s", msg.Target, c.IDContext())
		}
		target = r
	}

	out, b, err := oscore.ProtectRequest(sender, target, msg)
	if err != nil {
		return nil, err
	}
	s.exchanges.Add(exchangeKey{peer: key, token: string(msg.Token), outbound: true}, b)
	s.updateExchanges()
	instrument.Protected(b.Mode)
	s.log.Debugf("group %s: protected %v from %s", c.IDContext(), b.Mode, sender.ID())
	return out, nil
}

// Unprotect verifies and decrypts msg received from key. Requests are
// matched to a group by their kid context, falling back to the context
// registered under key. Responses must belong to a request this service
// protected. Each responder to a multicast request is accepted until the
// exchange is forgotten, and at most once without its own partial IV.
func (s *Service) Unprotect(msg *domain.Message, key domain.CorrelationKey) (*domain.Message, error) {
	if s.closed.Load() {
		return nil, errClosed
	}
	out, err := s.unprotect(msg, key)
	if err != nil {
		instrument.Rejected(err)
		s.log.Warningf("rejected message from %q: %v", key, err)
		return nil, err
	}
	return out, nil
}

func (s *Service) unprotect(msg *domain.Message, key domain.CorrelationKey) (*domain.Message, error) {
	if !msg.HasSecurity {
		return nil, domain.Errorf(domain.KindMalformedMessage, "message carries no OSCORE option")
	}
	opt, err := oscore.DecodeOption(msg.Security)
	if err != nil {
		return nil, err
	}

	if !msg.Code.IsRequest() {
		b, ok := s.exchanges.Get(exchangeKey{peer: key, token: string(msg.Token), outbound: true})
		if !ok {
			return nil, domain.Errorf(domain.KindContextNotFound, "no request to %q with token %x", key, msg.Token)
		}
		out, err := oscore.UnprotectResponse(b, msg)
		if err != nil {
			return nil, err
		}
		instrument.Unprotected(responseMode(msg))
		return out, nil
	}

	c, err := s.requestContext(opt, key)
	if err != nil {
		return nil, err
	}
	out, b, err := oscore.UnprotectRequest(c, msg)
	if err != nil {
		return nil, err
	}
	s.exchanges.Add(exchangeKey{peer: key, token: string(msg.Token)}, b)
	s.updateExchanges()
	instrument.Unprotected(b.Mode)
	return out, nil
}

func (s *Service) requestContext(opt oscore.Option, key domain.CorrelationKey) (*secctx.CommonContext, error) {
	if len(opt.KIDContext) > 0 {
		if c, err := s.db.LookupGroup(opt.KIDContext); err == nil {
			return c, nil
		}
	}
	return s.db.Lookup(key)
}

func (s *Service) updateExchanges() {
	instrument.Exchanges(s.exchanges.Len())
}

// Forget drops the bindings for token under key, in both directions.
func (s *Service) Forget(key domain.CorrelationKey, token []byte) {
	s.exchanges.Remove(exchangeKey{peer: key, token: string(token)})
	s.exchanges.Remove(exchangeKey{peer: key, token: string(token), outbound: true})
	s.updateExchanges()
}

// ForgetToken drops every binding for token, whatever the peer.
func (s *Service) ForgetToken(token []byte) {
	for _, k := range s.exchanges.Keys() {
		if k.token == string(token) {
			s.exchanges.Remove(k)
		}
	}
	s.updateExchanges()
}

// Checkpoint writes every sender counter and replay window to the state store.
func (s *Service) Checkpoint() error {
	if s.state == nil {
		return nil
	}
	var errs []error
	s.db.Range(func(c *secctx.CommonContext) bool {
		gid := c.IDContext()
		for _, snd := range c.Senders() {
			st := snd.State()
			st.Sequence += s.reserve
			if err := s.state.SaveSender(gid, snd.ID(), st); err != nil {
				errs = append(errs, err)
			}
		}
		for _, r := range c.Recipients() {
			if err := s.state.SaveWindow(gid, r.ID(), r.WindowState()); err != nil {
				errs = append(errs, err)
			}
		}
		return true
	})
	return errors.Join(errs...)
}

// Restore loads persisted counters and windows into the registered
// contexts. Nothing moves backward: a counter or window already ahead of
// the stored one is kept.
func (s *Service) Restore() error {
	if s.state == nil {
		return nil
	}
	var errs []error
	s.db.Range(func(c *secctx.CommonContext) bool {
		gid := c.IDContext()
		for _, snd := range c.Senders() {
			st, ok, err := s.state.LoadSender(gid, snd.ID())
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if ok && snd.RestoreSequenceNumber(st.Sequence) {
				s.log.Debugf("group %s: sender %s resumes at %d", gid, snd.ID(), st.Sequence)
			}
		}
		for _, r := range c.Recipients() {
			st, ok, err := s.state.LoadWindow(gid, r.ID())
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if !ok {
				continue
			}
			if _, err := r.RestoreWindow(st); err != nil {
				errs = append(errs, fmt.Errorf("group %s recipient %s: %w", gid, r.ID(), err))
			}
		}
		return true
	})
	return errors.Join(errs...)
}

// Close checkpoints and releases the state store.
func (s *Service) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if s.state == nil {
		return nil
	}
	return errors.Join(s.Checkpoint(), s.state.Close())
}

func responseMode(msg *domain.Message) domain.Mode {
	if opt, err := oscore.DecodeOption(msg.Security); err == nil && opt.Group {
		return domain.GroupResponse
	}
	return domain.PairwiseResponse
}

// Compile-time assertion that Service implements domain.SessionService.
var _ domain.SessionService = (*Service)(nil)
