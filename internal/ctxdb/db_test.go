package ctxdb_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"groscore/internal/cose"
	"groscore/internal/ctxdb"
	"groscore/internal/domain"
	"groscore/internal/protocol/secctx"
)

func group(t *testing.T, gid string) *secctx.CommonContext {
	t.Helper()
	c, err := secctx.NewCommonContext(secctx.Params{
		MasterSecret:   bytes.Repeat([]byte{7}, 16),
		IDContext:      []byte(gid),
		CountersignAlg: cose.AlgEdDSA,
	})
	require.NoError(t, err)
	return c
}

func TestAddLookup(t *testing.T) {
	db := ctxdb.New()
	a := group(t, "alpha")

	_, err := db.Lookup("coap://[ff02::fd]/sensors")
	require.ErrorIs(t, err, domain.ErrContextNotFound)

	db.Add("coap://[ff02::fd]/sensors", a)
	got, err := db.Lookup("coap://[ff02::fd]/sensors")
	require.NoError(t, err)
	require.Same(t, a, got)

	got, err = db.LookupGroup([]byte("alpha"))
	require.NoError(t, err)
	require.Same(t, a, got)

	_, err = db.LookupGroup([]byte("beta"))
	require.ErrorIs(t, err, domain.ErrContextNotFound)
}

func TestAdd_ReplacesEntry(t *testing.T) {
	db := ctxdb.New()
	a, b := group(t, "alpha"), group(t, "beta")

	db.Add("peer", a)
	db.Add("peer", b)

	got, err := db.Lookup("peer")
	require.NoError(t, err)
	require.Same(t, b, got)
	require.Equal(t, 1, db.Len())

	_, err = db.LookupGroup([]byte("alpha"))
	require.ErrorIs(t, err, domain.ErrContextNotFound)
}

func TestRemove_KeepsGroupWhileReferenced(t *testing.T) {
	db := ctxdb.New()
	a := group(t, "alpha")
	db.Add("10.0.0.1:5683", a)
	db.Add("10.0.0.2:5683", a)

	db.Remove("10.0.0.1:5683")
	_, err := db.LookupGroup([]byte("alpha"))
	require.NoError(t, err)

	db.Remove("10.0.0.2:5683")
	_, err = db.LookupGroup([]byte("alpha"))
	require.ErrorIs(t, err, domain.ErrContextNotFound)

	db.Remove("missing")
	require.Zero(t, db.Len())
}

func TestLookupRecipient(t *testing.T) {
	db := ctxdb.New()
	a := group(t, "alpha")
	r, err := a.AddRecipient([]byte{0x52}, 32, nil)
	require.NoError(t, err)
	db.Add("peer", a)

	got, err := db.LookupRecipient([]byte{0x52}, []byte("alpha"))
	require.NoError(t, err)
	require.Same(t, r, got)

	_, err = db.LookupRecipient([]byte{0x53}, []byte("alpha"))
	require.ErrorIs(t, err, domain.ErrContextNotFound)
	_, err = db.LookupRecipient([]byte{0x52}, []byte("beta"))
	require.ErrorIs(t, err, domain.ErrContextNotFound)

	db.RemoveRecipient(r)
	_, err = db.LookupRecipient([]byte{0x52}, []byte("alpha"))
	require.ErrorIs(t, err, domain.ErrContextNotFound)
}

func TestRange(t *testing.T) {
	db := ctxdb.New()
	a, b := group(t, "alpha"), group(t, "beta")
	db.Add("a1", a)
	db.Add("a2", a)
	db.Add("b", b)

	seen := map[string]int{}
	db.Range(func(c *secctx.CommonContext) bool {
		seen[string(c.IDContext())]++
		return true
	})
	require.Equal(t, map[string]int{"alpha": 1, "beta": 1}, seen)

	calls := 0
	db.Range(func(*secctx.CommonContext) bool {
		calls++
		return false
	})
	require.Equal(t, 1, calls)
}

func TestConcurrentAccess(t *testing.T) {
	db := ctxdb.New()
	a := group(t, "alpha")
	db.Add("peer", a)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := db.Lookup("peer"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				db.Add("peer", a)
			}
		}()
	}
	wg.Wait()
}
