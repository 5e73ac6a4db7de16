package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"groscore/internal/domain"
	"groscore/internal/store"
)

type stateStore interface {
	domain.StateStore
	store.Dumper
}

func backends(t *testing.T) map[string]func(dir string) stateStore {
	return map[string]func(dir string) stateStore{
		"file": func(dir string) stateStore {
			return store.NewStateFileStore(filepath.Join(dir, store.StateFilename))
		},
		"bolt": func(dir string) stateStore {
			s, err := store.OpenBoltStateStore(filepath.Join(dir, "state.db"))
			require.NoError(t, err)
			return s
		},
	}
}

func TestStateStore_RoundTrip(t *testing.T) {
	group := domain.ID("testtest")
	window := domain.WindowState{High: 70, Seen: true, Size: 32, Bitmap: []uint64{0x8000_0001}}

	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			s := open(dir)

			_, ok, err := s.LoadSender(group, domain.ID{0x25})
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, s.SaveSender(group, domain.ID{0x25}, domain.SenderState{Sequence: 12}))
			require.NoError(t, s.SaveSender(group, domain.ID{}, domain.SenderState{Sequence: 3}))
			require.NoError(t, s.SaveWindow(group, domain.ID{0x77}, window))
			require.NoError(t, s.Close())

			// Reopen to prove the data reached disk.
			s = open(dir)
			defer s.Close()

			st, ok, err := s.LoadSender(group, domain.ID{0x25})
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, uint64(12), st.Sequence)

			st, ok, err = s.LoadSender(group, domain.ID{})
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, uint64(3), st.Sequence)

			w, ok, err := s.LoadWindow(group, domain.ID{0x77})
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, window, w)

			_, ok, err = s.LoadWindow(domain.ID("other"), domain.ID{0x77})
			require.NoError(t, err)
			require.False(t, ok)

			snap, err := s.Dump()
			require.NoError(t, err)
			require.Len(t, snap.Senders, 2)
			require.Equal(t, "", snap.Senders[0].Sender.String())
			require.Equal(t, "25", snap.Senders[1].Sender.String())
			require.Len(t, snap.Windows, 1)
			require.Equal(t, group, snap.Windows[0].Group)
		})
	}
}

func TestStateStore_Overwrite(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t.TempDir())
			defer s.Close()

			g := domain.ID{0x01}
			require.NoError(t, s.SaveSender(g, domain.ID{0x02}, domain.SenderState{Sequence: 1}))
			require.NoError(t, s.SaveSender(g, domain.ID{0x02}, domain.SenderState{Sequence: 9}))
			st, _, err := s.LoadSender(g, domain.ID{0x02})
			require.NoError(t, err)
			require.Equal(t, uint64(9), st.Sequence)
		})
	}
}
