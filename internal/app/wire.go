package app

import (
	"errors"
	"fmt"

	"groscore/internal/crypto"
	"groscore/internal/ctxdb"
	"groscore/internal/domain"
	"groscore/internal/instrument"
	"groscore/internal/log"
	"groscore/internal/protocol/secctx"
	identitysvc "groscore/internal/services/identity"
	messagesvc "groscore/internal/services/message"
	sessionsvc "groscore/internal/services/session"
	"groscore/internal/store"
)

// Wire bundles the stores and services built from a Config.
type Wire struct {
	Config   *Config
	Log      *log.Backend
	Identity *identitysvc.Service
	State    domain.StateStore
	Sessions *sessionsvc.Service
	Messages *messagesvc.Service
}

// NewIdentity returns the identity service for the home directory in cfg.
func NewIdentity(cfg *Config) *identitysvc.Service {
	return identitysvc.New(store.NewIdentityFileStore(cfg.Identity.Home))
}

// OpenState opens the state store selected in cfg; "none" yields nil.
func OpenState(cfg *State) (domain.StateStore, error) {
	switch cfg.Backend {
	case BackendNone:
		return nil, nil
	case BackendBolt:
		return store.OpenBoltStateStore(cfg.Path)
	default:
		return store.NewStateFileStore(cfg.Path), nil
	}
}

// NewWire constructs the dependency graph from cfg. The passphrase unseals
// the identity key for groups without an inline sender key; it is not
// needed otherwise. Persisted state is restored before NewWire returns.
func NewWire(cfg *Config, passphrase string) (*Wire, error) {
	backend, err := log.New(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Disable)
	if err != nil {
		return nil, err
	}
	instrument.Init(nil)

	w := &Wire{Config: cfg, Log: backend, Identity: NewIdentity(cfg)}
	var identityKey *crypto.PrivateKey
	loadIdentity := func() (*crypto.PrivateKey, error) {
		if identityKey != nil {
			return identityKey, nil
		}
		k, err := w.Identity.PrivateKey(passphrase)
		if err != nil {
			return nil, fmt.Errorf("app: unsealing identity: %w", err)
		}
		identityKey = k
		return k, nil
	}

	db := ctxdb.New()
	for i, g := range cfg.Group {
		c, err := BuildGroup(g, loadIdentity)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("app: Group[%d]: %w", i, err), backend.Close())
		}
		db.Add(domain.CorrelationKey(g.Key), c)
	}

	if w.State, err = OpenState(cfg.State); err != nil {
		return nil, errors.Join(err, backend.Close())
	}
	opts := []sessionsvc.Option{
		sessionsvc.WithLogBackend(backend),
		sessionsvc.WithSequenceReserve(cfg.State.SequenceReserve),
	}
	if w.State != nil {
		opts = append(opts, sessionsvc.WithStateStore(w.State))
	}
	if w.Sessions, err = sessionsvc.New(db, opts...); err != nil {
		return nil, errors.Join(err, backend.Close())
	}
	if err := w.Sessions.Restore(); err != nil {
		return nil, errors.Join(err, w.Close())
	}
	w.Messages = messagesvc.New(w.Sessions, backend)
	return w, nil
}

// Close checkpoints the session and releases the log file.
func (w *Wire) Close() error {
	return errors.Join(w.Sessions.Close(), w.Log.Close())
}

// BuildGroup creates the Common Context described by g. identity supplies
// the sealed key when the sender has no inline key.
func BuildGroup(g *Group, identity func() (*crypto.PrivateKey, error)) (*secctx.CommonContext, error) {
	c, err := secctx.NewCommonContext(g.Params())
	if err != nil {
		return nil, err
	}
	c.SetPairwiseRequests(g.PairwiseRequests)
	c.SetPairwiseResponses(g.PairwiseResponses)
	c.SetResponsesIncludePartialIV(g.ResponsesIncludePartialIV)

	var priv *crypto.PrivateKey
	if g.Sender.Key != "" {
		priv, err = parsePrivateKey(g.Sender.Key)
	} else {
		priv, err = identity()
	}
	if err != nil {
		return nil, err
	}
	sid, err := crypto.DecodeBytes(g.Sender.ID)
	if err != nil {
		return nil, err
	}
	if _, err := c.AddSender(sid, priv); err != nil {
		return nil, err
	}

	for _, r := range g.Recipient {
		rid, err := crypto.DecodeBytes(r.ID)
		if err != nil {
			return nil, err
		}
		var pub *crypto.PublicKey
		if r.PublicKey != "" {
			if pub, err = parsePublicKey(r.PublicKey); err != nil {
				return nil, err
			}
		}
		if _, err := c.AddRecipient(rid, r.ReplayWindow, pub); err != nil {
			return nil, err
		}
	}
	for _, k := range g.KnownKey {
		kid, err := crypto.DecodeBytes(k.ID)
		if err != nil {
			return nil, err
		}
		pub, err := parsePublicKey(k.PublicKey)
		if err != nil {
			return nil, err
		}
		if err := c.AddPublicKey(kid, pub); err != nil {
			return nil, err
		}
	}
	return c, nil
}
