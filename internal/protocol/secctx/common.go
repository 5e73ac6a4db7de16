package secctx

import (
	"errors"
	"sync"
	"sync/atomic"

	"groscore/internal/cose"
	"groscore/internal/crypto"
	"groscore/internal/domain"
	"groscore/internal/protocol/kdf"
	"groscore/internal/protocol/replay"
)

// Resolution tells how Resolve found a recipient.
type Resolution uint8

const (
	// Registered recipients already exist in the context.
	Registered Resolution = iota + 1
	// Derivable recipients were built from a deferred public key and are not
	// registered until Adopt.
	Derivable
	// Unknown identifiers have neither a context nor a deferred key.
	Unknown
)

var errNoSender = errors.New("no sender context")

// Params configures a CommonContext. Zero algorithms select the defaults
// AES-CCM-16-64-128 and HKDF-SHA-256; nil capability descriptors are derived
// from CountersignAlg.
type Params struct {
	MasterSecret      []byte
	MasterSalt        []byte
	IDContext         []byte
	AEAD              cose.Algorithm
	KDF               cose.Algorithm
	CountersignAlg    cose.Algorithm
	ParCountersign    *cose.CountersignParams
	ParCountersignKey []int
	// ReplayWindow sizes the windows of recipients derived on demand.
	ReplayWindow int
}

// CommonContext is the per-group security context.
type CommonContext struct {
	params     kdf.Params
	commonIV   []byte
	maxIDLen   int
	signAlg    cose.Algorithm
	par        cose.CountersignParams
	parKey     []int
	windowSize int

	pairwiseRequests    atomic.Bool
	pairwiseResponses   atomic.Bool
	responsesIncludePIV atomic.Bool

	mu         sync.RWMutex
	senders    map[string]*SenderContext
	first      *SenderContext
	recipients map[string]*RecipientContext
	deferred   map[string]*crypto.PublicKey
	onDerive   func(*RecipientContext)
	onAdopt    func(*RecipientContext)
}

func configErr(format string, args ...any) error {
	return domain.Errorf(domain.KindConfiguration, format, args...)
}

// NewCommonContext validates p and derives the common IV.
func NewCommonContext(p Params) (*CommonContext, error) {
	if p.AEAD == 0 {
		p.AEAD = cose.AlgAESCCM16_64_128
	}
	if p.KDF == 0 {
		p.KDF = cose.AlgHKDFSHA256
	}
	if p.ReplayWindow == 0 {
		p.ReplayWindow = replay.DefaultSize
	}

	aead, ok := p.AEAD.AEAD()
	if !ok {
		return nil, configErr("%v is not a supported AEAD algorithm", p.AEAD)
	}
	if _, ok := p.KDF.Hash(); !ok {
		return nil, configErr("%v is not a supported KDF", p.KDF)
	}
	if len(p.MasterSecret) == 0 {
		return nil, configErr("master secret is empty")
	}
	if len(p.IDContext) == 0 {
		return nil, configErr("group identifier is empty")
	}
	if p.ReplayWindow < 0 {
		return nil, configErr("replay window size %d", p.ReplayWindow)
	}

	par, parKey, err := cose.DefaultCountersignParams(p.CountersignAlg)
	if err != nil {
		return nil, domain.Wrap(domain.KindConfiguration, "countersignature algorithm", err)
	}
	if p.ParCountersign != nil {
		par = *p.ParCountersign
	}
	if p.ParCountersignKey != nil {
		parKey = p.ParCountersignKey
	}
	if err := cose.ValidateCountersign(p.CountersignAlg, par, parKey); err != nil {
		return nil, domain.Wrap(domain.KindConfiguration, "countersignature capabilities", err)
	}

	c := &CommonContext{
		params: kdf.Params{
			MasterSecret: append([]byte(nil), p.MasterSecret...),
			MasterSalt:   append([]byte{}, p.MasterSalt...),
			IDContext:    append([]byte(nil), p.IDContext...),
			AEAD:         p.AEAD,
			KDF:          p.KDF,
		},
		maxIDLen:   aead.NonceSize - 6,
		signAlg:    p.CountersignAlg,
		par:        par,
		parKey:     parKey,
		windowSize: p.ReplayWindow,
		senders:    make(map[string]*SenderContext),
		recipients: make(map[string]*RecipientContext),
		deferred:   make(map[string]*crypto.PublicKey),
	}
	if c.commonIV, err = kdf.CommonIV(c.params); err != nil {
		return nil, err
	}
	return c, nil
}

// IDContext returns a copy of the group identifier.
func (c *CommonContext) IDContext() domain.ID {
	return append(domain.ID(nil), c.params.IDContext...)
}

// AEAD returns the content encryption algorithm.
func (c *CommonContext) AEAD() cose.Algorithm { return c.params.AEAD }

// CountersignAlg returns the countersignature algorithm.
func (c *CommonContext) CountersignAlg() cose.Algorithm { return c.signAlg }

// CommonIV returns a copy of the common IV.
func (c *CommonContext) CommonIV() []byte { return append([]byte(nil), c.commonIV...) }

// MaxIDLength is the longest sender or recipient identifier the nonce can hold.
func (c *CommonContext) MaxIDLength() int { return c.maxIDLen }

// ExternalAAD fills the algorithm and group fields of the external AAD for a
// request identified by kid and piv.
func (c *CommonContext) ExternalAAD(kid, piv []byte) cose.ExternalAAD {
	return cose.ExternalAAD{
		AEAD:              c.params.AEAD,
		SignAlg:           c.signAlg,
		ParCountersign:    c.par,
		ParCountersignKey: c.parKey,
		RequestKID:        kid,
		RequestPIV:        piv,
		RequestKIDContext: c.params.IDContext,
	}
}

// SetPairwiseRequests switches pairwise mode for requests with a target.
func (c *CommonContext) SetPairwiseRequests(on bool) { c.pairwiseRequests.Store(on) }

// PairwiseRequests reports the pairwise request flag.
func (c *CommonContext) PairwiseRequests() bool { return c.pairwiseRequests.Load() }

// SetPairwiseResponses switches pairwise mode for responses.
func (c *CommonContext) SetPairwiseResponses(on bool) { c.pairwiseResponses.Store(on) }

// PairwiseResponses reports the pairwise response flag.
func (c *CommonContext) PairwiseResponses() bool { return c.pairwiseResponses.Load() }

// SetResponsesIncludePartialIV makes responses carry their own partial IV.
func (c *CommonContext) SetResponsesIncludePartialIV(on bool) { c.responsesIncludePIV.Store(on) }

// ResponsesIncludePartialIV reports the response partial IV flag.
func (c *CommonContext) ResponsesIncludePartialIV() bool { return c.responsesIncludePIV.Load() }

// OnDerive registers fn to run on every candidate recipient Resolve derives,
// before it is used. The session uses it to restore persisted windows.
func (c *CommonContext) OnDerive(fn func(*RecipientContext)) {
	c.mu.Lock()
	c.onDerive = fn
	c.mu.Unlock()
}

// OnAdopt registers fn to run once for every candidate Adopt installs.
func (c *CommonContext) OnAdopt(fn func(*RecipientContext)) {
	c.mu.Lock()
	c.onAdopt = fn
	c.mu.Unlock()
}

func (c *CommonContext) checkID(id []byte) error {
	if len(id) > c.maxIDLen {
		return configErr("identifier %x is longer than %d bytes", id, c.maxIDLen)
	}
	return nil
}

func (c *CommonContext) checkKeyAlg(alg cose.Algorithm) error {
	if alg != c.signAlg {
		return configErr("%v key cannot countersign in a %v group", alg, c.signAlg)
	}
	return nil
}

// AddSender derives the sender key for id and registers the local signing key.
// The first sender added becomes the default sender.
func (c *CommonContext) AddSender(id []byte, priv *crypto.PrivateKey) (*SenderContext, error) {
	if priv == nil {
		return nil, configErr("sender %x has no private key", id)
	}
	if err := c.checkID(id); err != nil {
		return nil, err
	}
	if err := c.checkKeyAlg(priv.Algorithm()); err != nil {
		return nil, err
	}
	key, err := kdf.Key(c.params, id)
	if err != nil {
		return nil, err
	}
	s := &SenderContext{common: c, id: append([]byte{}, id...), key: key, priv: priv}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.senders[string(id)]; dup {
		return nil, domain.Errorf(domain.KindDuplicateIdentifier, "sender %x", id)
	}
	c.senders[string(id)] = s
	if c.first == nil {
		c.first = s
	}
	return s, nil
}

// Sender returns the default sender context.
func (c *CommonContext) Sender() (*SenderContext, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.first == nil {
		return nil, domain.Wrap(domain.KindConfiguration, "", errNoSender)
	}
	return c.first, nil
}

// SenderByID returns the sender context registered under id.
func (c *CommonContext) SenderByID(id []byte) (*SenderContext, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.senders[string(id)]
	return s, ok
}

// Senders lists the sender contexts.
func (c *CommonContext) Senders() []*SenderContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*SenderContext, 0, len(c.senders))
	for _, s := range c.senders {
		out = append(out, s)
	}
	return out
}

// AddRecipient derives the recipient key for id and creates an empty replay
// window. A nil pub falls back to a key registered with AddPublicKey.
func (c *CommonContext) AddRecipient(id []byte, window int, pub *crypto.PublicKey) (*RecipientContext, error) {
	if window <= 0 {
		return nil, configErr("replay window size %d", window)
	}
	if err := c.checkID(id); err != nil {
		return nil, err
	}
	if pub != nil {
		if err := c.checkKeyAlg(pub.Algorithm()); err != nil {
			return nil, err
		}
	}
	r, err := c.newRecipient(id, window, pub)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.recipients[string(id)]; dup {
		return nil, domain.Errorf(domain.KindDuplicateIdentifier, "recipient %x", id)
	}
	if d, ok := c.deferred[string(id)]; ok {
		if r.pub == nil {
			r.pub = d
		}
		delete(c.deferred, string(id))
	}
	c.recipients[string(id)] = r
	return r, nil
}

func (c *CommonContext) newRecipient(id []byte, window int, pub *crypto.PublicKey) (*RecipientContext, error) {
	key, err := kdf.Key(c.params, id)
	if err != nil {
		return nil, err
	}
	w, err := replay.New(window)
	if err != nil {
		return nil, domain.Wrap(domain.KindConfiguration, "", err)
	}
	return &RecipientContext{
		common:   c,
		id:       append([]byte{}, id...),
		key:      key,
		pub:      pub,
		window:   w,
		pairwise: make(map[string]pairwiseKeys),
	}, nil
}

// RemoveRecipient drops r from the context. A later message from the same
// peer needs a fresh AddRecipient or AddPublicKey.
func (c *CommonContext) RemoveRecipient(r *RecipientContext) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.recipients[string(r.id)]; ok && cur == r {
		delete(c.recipients, string(r.id))
	}
}

// Recipient returns the registered recipient context for id.
func (c *CommonContext) Recipient(id []byte) (*RecipientContext, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.recipients[string(id)]
	return r, ok
}

// Recipients lists the registered recipient contexts.
func (c *CommonContext) Recipients() []*RecipientContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*RecipientContext, 0, len(c.recipients))
	for _, r := range c.recipients {
		out = append(out, r)
	}
	return out
}

// AddPublicKey registers the countersignature key of peer id. An existing
// recipient context gets the key directly; otherwise the key is kept for
// deriving the context when the peer first shows up.
func (c *CommonContext) AddPublicKey(id []byte, pub *crypto.PublicKey) error {
	if pub == nil {
		return configErr("nil public key for %x", id)
	}
	if err := c.checkID(id); err != nil {
		return err
	}
	if err := c.checkKeyAlg(pub.Algorithm()); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.recipients[string(id)]; ok {
		r.setPublicKey(pub)
		return nil
	}
	c.deferred[string(id)] = pub
	return nil
}

// Resolve finds the recipient context for id. For a Derivable result the
// returned context is a fresh candidate that only Adopt registers.
func (c *CommonContext) Resolve(id []byte) (*RecipientContext, Resolution, error) {
	c.mu.RLock()
	r, ok := c.recipients[string(id)]
	pub := c.deferred[string(id)]
	hook := c.onDerive
	c.mu.RUnlock()

	if ok {
		return r, Registered, nil
	}
	if pub == nil || c.checkID(id) != nil {
		return nil, Unknown, nil
	}
	cand, err := c.newRecipient(id, c.windowSize, pub)
	if err != nil {
		return nil, Unknown, err
	}
	if hook != nil {
		hook(cand)
	}
	return cand, Derivable, nil
}

// Adopt registers a candidate from Resolve and reports whether it was
// installed. If another caller registered the same identifier first, that
// context is returned instead with false.
func (c *CommonContext) Adopt(cand *RecipientContext) (*RecipientContext, bool) {
	c.mu.Lock()
	if cur, ok := c.recipients[string(cand.id)]; ok {
		c.mu.Unlock()
		return cur, false
	}
	if d, ok := c.deferred[string(cand.id)]; ok && d.Equal(cand.PublicKey()) {
		delete(c.deferred, string(cand.id))
	}
	c.recipients[string(cand.id)] = cand
	hook := c.onAdopt
	c.mu.Unlock()

	if hook != nil {
		hook(cand)
	}
	return cand, true
}
