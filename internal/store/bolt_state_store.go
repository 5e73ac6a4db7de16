package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"

	"groscore/internal/domain"
)

const (
	metadataBucket = "metadata"
	sendersBucket  = "senders"
	windowsBucket  = "windows"
	versionKey     = "version"

	boltStateVersion = 0
)

// BoltStateStore keeps sequence numbers and replay windows in a bbolt
// database. Each group is a nested bucket named by its identifier; values
// are CBOR encoded.
type BoltStateStore struct {
	sync.Mutex

	db *bolt.DB
}

// OpenBoltStateStore opens or creates the database at path.
func OpenBoltStateStore(path string) (*BoltStateStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	s := &BoltStateStore{db: db}

	if err := db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists([]byte(metadataBucket))
		if err != nil {
			return err
		}
		for _, name := range []string{sendersBucket, windowsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		if b := meta.Get([]byte(versionKey)); b != nil {
			if len(b) != 1 || b[0] != boltStateVersion {
				return fmt.Errorf("store: incompatible state database version %v", b)
			}
			return nil
		}
		return meta.Put([]byte(versionKey), []byte{boltStateVersion})
	}); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// roleKey prefixes id with its length so the empty identifier is a valid key.
func roleKey(id domain.ID) []byte {
	return append([]byte{byte(len(id))}, id...)
}

func (s *BoltStateStore) put(bucket string, group, id domain.ID, v any) error {
	if len(group) == 0 {
		return fmt.Errorf("store: empty group identifier")
	}
	raw, err := cbor.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		gBkt, err := tx.Bucket([]byte(bucket)).CreateBucketIfNotExists(group)
		if err != nil {
			return err
		}
		return gBkt.Put(roleKey(id), raw)
	})
}

func (s *BoltStateStore) get(bucket string, group, id domain.ID, v any) (bool, error) {
	if len(group) == 0 {
		return false, nil
	}
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		gBkt := tx.Bucket([]byte(bucket)).Bucket(group)
		if gBkt == nil {
			return nil
		}
		raw := gBkt.Get(roleKey(id))
		if raw == nil {
			return nil
		}
		found = true
		return cbor.Unmarshal(raw, v)
	})
	return found, err
}

// SaveSender records the sequence number of sender in group.
func (s *BoltStateStore) SaveSender(group, sender domain.ID, st domain.SenderState) error {
	return s.put(sendersBucket, group, sender, st)
}

// LoadSender returns the recorded sequence number of sender in group.
func (s *BoltStateStore) LoadSender(group, sender domain.ID) (domain.SenderState, bool, error) {
	var st domain.SenderState
	ok, err := s.get(sendersBucket, group, sender, &st)
	return st, ok, err
}

// SaveWindow records the replay window of recipient in group.
func (s *BoltStateStore) SaveWindow(group, recipient domain.ID, st domain.WindowState) error {
	return s.put(windowsBucket, group, recipient, st)
}

// LoadWindow returns the recorded replay window of recipient in group.
func (s *BoltStateStore) LoadWindow(group, recipient domain.ID) (domain.WindowState, bool, error) {
	var st domain.WindowState
	ok, err := s.get(windowsBucket, group, recipient, &st)
	return st, ok, err
}

// Dump lists the database contents.
func (s *BoltStateStore) Dump() (Snapshot, error) {
	var snap Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		if err := forEachEntry(tx, sendersBucket, func(g, id domain.ID, raw []byte) error {
			var st domain.SenderState
			if err := cbor.Unmarshal(raw, &st); err != nil {
				return err
			}
			snap.Senders = append(snap.Senders, SenderEntry{Group: g, Sender: id, State: st})
			return nil
		}); err != nil {
			return err
		}
		return forEachEntry(tx, windowsBucket, func(g, id domain.ID, raw []byte) error {
			var st domain.WindowState
			if err := cbor.Unmarshal(raw, &st); err != nil {
				return err
			}
			snap.Windows = append(snap.Windows, WindowEntry{Group: g, Recipient: id, State: st})
			return nil
		})
	})
	if err != nil {
		return Snapshot{}, err
	}
	snap.sort()
	return snap, nil
}

func forEachEntry(tx *bolt.Tx, bucket string, fn func(g, id domain.ID, raw []byte) error) error {
	top := tx.Bucket([]byte(bucket))
	return top.ForEachBucket(func(g []byte) error {
		group := append(domain.ID(nil), g...)
		return top.Bucket(g).ForEach(func(k, v []byte) error {
			if len(k) == 0 || int(k[0]) != len(k)-1 {
				return fmt.Errorf("store: malformed key %x in group %x", k, g)
			}
			return fn(group, append(domain.ID{}, k[1:]...), v)
		})
	})
}

// Close flushes and closes the database.
func (s *BoltStateStore) Close() error {
	s.Lock()
	defer s.Unlock()
	if s.db == nil {
		return nil
	}
	err := errors.Join(s.db.Sync(), s.db.Close())
	s.db = nil
	return err
}

var (
	_ domain.StateStore = (*BoltStateStore)(nil)
	_ Dumper            = (*BoltStateStore)(nil)
)
