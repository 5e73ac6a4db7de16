package store

import (
	"os"
	"path/filepath"
	"sync"

	"groscore/internal/domain"
)

// StateFilename is the JSON state file inside a home directory.
const StateFilename = "state.json"

type stateFile struct {
	Senders map[string]domain.SenderState `json:"senders"`
	Windows map[string]domain.WindowState `json:"windows"`
}

// StateFileStore keeps sequence numbers and replay windows in one JSON file
// that is rewritten atomically on every save.
type StateFileStore struct {
	path string
	mu   sync.Mutex
}

// NewStateFileStore returns a store backed by path. The file is created on
// the first save.
func NewStateFileStore(path string) *StateFileStore {
	return &StateFileStore{path: path}
}

func (s *StateFileStore) load() (stateFile, error) {
	st := stateFile{
		Senders: make(map[string]domain.SenderState),
		Windows: make(map[string]domain.WindowState),
	}
	if err := readJSON(s.path, &st); err != nil {
		return st, err
	}
	if st.Senders == nil {
		st.Senders = make(map[string]domain.SenderState)
	}
	if st.Windows == nil {
		st.Windows = make(map[string]domain.WindowState)
	}
	return st, nil
}

func (s *StateFileStore) update(fn func(*stateFile)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return err
	}
	fn(&st)
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return writeJSON(s.path, st, 0o600)
}

// SaveSender records the sequence number of sender in group.
func (s *StateFileStore) SaveSender(group, sender domain.ID, st domain.SenderState) error {
	return s.update(func(f *stateFile) { f.Senders[entryKey(group, sender)] = st })
}

// LoadSender returns the recorded sequence number of sender in group.
func (s *StateFileStore) LoadSender(group, sender domain.ID) (domain.SenderState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return domain.SenderState{}, false, err
	}
	st, ok := f.Senders[entryKey(group, sender)]
	return st, ok, nil
}

// SaveWindow records the replay window of recipient in group.
func (s *StateFileStore) SaveWindow(group, recipient domain.ID, st domain.WindowState) error {
	return s.update(func(f *stateFile) { f.Windows[entryKey(group, recipient)] = st })
}

// LoadWindow returns the recorded replay window of recipient in group.
func (s *StateFileStore) LoadWindow(group, recipient domain.ID) (domain.WindowState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return domain.WindowState{}, false, err
	}
	st, ok := f.Windows[entryKey(group, recipient)]
	return st, ok, nil
}

// Dump lists the file contents.
func (s *StateFileStore) Dump() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	for k, st := range f.Senders {
		g, id, err := parseEntryKey(k)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Senders = append(snap.Senders, SenderEntry{Group: g, Sender: id, State: st})
	}
	for k, st := range f.Windows {
		g, id, err := parseEntryKey(k)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Windows = append(snap.Windows, WindowEntry{Group: g, Recipient: id, State: st})
	}
	snap.sort()
	return snap, nil
}

// Close is a no-op; every save is already on disk.
func (s *StateFileStore) Close() error { return nil }

var (
	_ domain.StateStore = (*StateFileStore)(nil)
	_ Dumper            = (*StateFileStore)(nil)
)
