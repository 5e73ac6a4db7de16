package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"groscore/internal/cose"
	"groscore/internal/crypto"
	"groscore/internal/protocol/replay"
	"groscore/internal/protocol/secctx"
)

const (
	defaultLogLevel = "NOTICE"
	defaultHome     = ".groscore"

	BackendBolt = "bolt"
	BackendFile = "file"
	BackendNone = "none"
)

var errNoGroups = errors.New("config: no [[Group]] block was present")

// Logging is the logging configuration.
type Logging struct {
	// Disable disables logging entirely.
	Disable bool

	// File specifies the log file, if omitted stderr will be used.
	File string

	// Level specifies the log level.
	Level string
}

func (l *Logging) validate() error {
	lvl := strings.ToUpper(l.Level)
	switch lvl {
	case "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG":
	case "":
		lvl = defaultLogLevel
	default:
		return fmt.Errorf("config: Logging: Level '%v' is invalid", l.Level)
	}
	l.Level = lvl
	return nil
}

// State selects where sequence numbers and replay windows are persisted.
type State struct {
	// Backend is "bolt", "file" or "none".
	Backend string

	// Path is the database or JSON file. Relative paths are taken relative
	// to the identity home.
	Path string

	// SequenceReserve is added to every sequence number on checkpoint.
	SequenceReserve uint64
}

func (s *State) validate(home string) error {
	switch strings.ToLower(s.Backend) {
	case "", BackendFile:
		s.Backend = BackendFile
		if s.Path == "" {
			s.Path = "state.json"
		}
	case BackendBolt:
		s.Backend = BackendBolt
		if s.Path == "" {
			s.Path = "state.db"
		}
	case BackendNone:
		s.Backend = BackendNone
		return nil
	default:
		return fmt.Errorf("config: State: Backend '%v' is invalid", s.Backend)
	}
	if !filepath.IsAbs(s.Path) {
		s.Path = filepath.Join(home, s.Path)
	}
	return nil
}

// Identity locates the passphrase-sealed countersignature key.
type Identity struct {
	// Home is the directory holding the sealed key and, by default, the
	// state file. Defaults to $HOME/.groscore.
	Home string
}

// Sender is the local member of a group.
type Sender struct {
	// ID is the sender identifier in hex ("0x" optional) or "b64:...".
	ID string

	// Key is a COSE_Key with its private parameter, hex or base64. When
	// empty the sealed identity key is used.
	Key string
}

// Recipient is a known peer of a group.
type Recipient struct {
	ID string

	// PublicKey is the peer's COSE_Key. Without it the peer can only be
	// used once AddPublicKey supplies one.
	PublicKey string

	// ReplayWindow overrides the group's window size.
	ReplayWindow int
}

// KnownKey is a public key for a peer whose recipient context is created
// when its first message arrives.
type KnownKey struct {
	ID        string
	PublicKey string
}

// Group is one security group.
type Group struct {
	// Key is the correlation key: a request URI or peer address.
	Key string

	// ID is the group identifier (ID Context).
	ID string

	MasterSecret string
	MasterSalt   string

	// AEAD, KDF and CountersignAlg take COSE names ("AES-CCM-16-64-128",
	// "HKDF-SHA-256", "EdDSA") or numeric identifiers.
	AEAD           string
	KDF            string
	CountersignAlg string

	ReplayWindow int

	PairwiseRequests          bool
	PairwiseResponses         bool
	ResponsesIncludePartialIV bool

	Sender    *Sender
	Recipient []*Recipient
	KnownKey  []*KnownKey

	params secctx.Params
}

func (g *Group) validate(i int) error {
	errf := func(format string, args ...any) error {
		return fmt.Errorf("config: Group[%d]: "+format, append([]any{i}, args...)...)
	}
	if g.Key == "" {
		return errf("Key is empty")
	}
	if g.Sender == nil {
		return errf("no [Group.Sender] block")
	}
	if g.ReplayWindow == 0 {
		g.ReplayWindow = replay.DefaultSize
	}
	if g.CountersignAlg == "" {
		g.CountersignAlg = cose.AlgEdDSA.String()
	}

	var err error
	p := secctx.Params{ReplayWindow: g.ReplayWindow}
	for _, f := range []struct {
		name string
		in   string
		out  *[]byte
	}{
		{"ID", g.ID, &p.IDContext},
		{"MasterSecret", g.MasterSecret, &p.MasterSecret},
		{"MasterSalt", g.MasterSalt, &p.MasterSalt},
	} {
		if *f.out, err = crypto.DecodeBytes(f.in); err != nil {
			return errf("%s: %v", f.name, err)
		}
	}
	for _, f := range []struct {
		name string
		in   string
		out  *cose.Algorithm
	}{
		{"AEAD", g.AEAD, &p.AEAD},
		{"KDF", g.KDF, &p.KDF},
		{"CountersignAlg", g.CountersignAlg, &p.CountersignAlg},
	} {
		if f.in == "" {
			continue
		}
		if *f.out, err = cose.ParseAlgorithm(f.in); err != nil {
			return errf("%s: %v", f.name, err)
		}
	}

	tc, err := secctx.NewCommonContext(p)
	if err != nil {
		return errf("%v", err)
	}
	checkID := func(name, in string) error {
		id, err := crypto.DecodeBytes(in)
		if err != nil {
			return errf("%s: %v", name, err)
		}
		if len(id) > tc.MaxIDLength() {
			return errf("%s: identifier longer than %d bytes", name, tc.MaxIDLength())
		}
		return nil
	}

	if err := checkID("Sender.ID", g.Sender.ID); err != nil {
		return err
	}
	if g.Sender.Key != "" {
		if _, err := parsePrivateKey(g.Sender.Key); err != nil {
			return errf("Sender.Key: %v", err)
		}
	}
	for j, r := range g.Recipient {
		if err := checkID(fmt.Sprintf("Recipient[%d].ID", j), r.ID); err != nil {
			return err
		}
		if r.PublicKey != "" {
			if _, err := parsePublicKey(r.PublicKey); err != nil {
				return errf("Recipient[%d].PublicKey: %v", j, err)
			}
		}
		if r.ReplayWindow == 0 {
			r.ReplayWindow = g.ReplayWindow
		}
	}
	for j, k := range g.KnownKey {
		if err := checkID(fmt.Sprintf("KnownKey[%d].ID", j), k.ID); err != nil {
			return err
		}
		if _, err := parsePublicKey(k.PublicKey); err != nil {
			return errf("KnownKey[%d].PublicKey: %v", j, err)
		}
	}
	g.params = p
	return nil
}

// Params returns the validated group parameters.
func (g *Group) Params() secctx.Params { return g.params }

func parsePublicKey(s string) (*crypto.PublicKey, error) {
	k, err := cose.ParseKey(s)
	if err != nil {
		return nil, err
	}
	return crypto.PublicKeyFromCOSE(k)
}

func parsePrivateKey(s string) (*crypto.PrivateKey, error) {
	k, err := cose.ParseKey(s)
	if err != nil {
		return nil, err
	}
	return crypto.PrivateKeyFromCOSE(k)
}

// Config is the top level configuration.
type Config struct {
	Logging  *Logging
	State    *State
	Identity *Identity
	Group    []*Group
}

// FixupAndValidate applies defaults to config entries and validates the
// configuration sections.
func (c *Config) FixupAndValidate() error {
	if c.Logging == nil {
		c.Logging = &Logging{Level: defaultLogLevel}
	}
	if err := c.Logging.validate(); err != nil {
		return err
	}
	if c.Identity == nil {
		c.Identity = &Identity{}
	}
	if c.Identity.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("config: Identity: %w", err)
		}
		c.Identity.Home = filepath.Join(home, defaultHome)
	}
	if c.State == nil {
		c.State = &State{}
	}
	if err := c.State.validate(c.Identity.Home); err != nil {
		return err
	}

	if len(c.Group) == 0 {
		return errNoGroups
	}
	keys := make(map[string]bool)
	for i, g := range c.Group {
		if err := g.validate(i); err != nil {
			return err
		}
		if keys[g.Key] {
			return fmt.Errorf("config: Group[%d]: Key %q used twice", i, g.Key)
		}
		keys[g.Key] = true
	}
	return nil
}

// Load parses and validates the provided buffer b as a config file body and
// returns the Config.
func Load(b []byte) (*Config, error) {
	cfg := new(Config)
	if err := toml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads, parses, and validates the provided file and returns the
// Config.
func LoadFile(f string) (*Config, error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, err
	}
	return Load(b)
}
