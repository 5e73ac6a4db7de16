package ctxdb

import (
	"sync"

	"groscore/internal/domain"
	"groscore/internal/protocol/secctx"
)

// DB is a registry of Common Contexts. It is safe for concurrent use.
type DB struct {
	mu      sync.RWMutex
	byKey   map[domain.CorrelationKey]*secctx.CommonContext
	byGroup map[string]*secctx.CommonContext
}

// New returns an empty DB.
func New() *DB {
	return &DB{
		byKey:   make(map[domain.CorrelationKey]*secctx.CommonContext),
		byGroup: make(map[string]*secctx.CommonContext),
	}
}

// Add registers c under key, replacing any context previously stored there.
func (db *DB) Add(key domain.CorrelationKey, c *secctx.CommonContext) {
	db.mu.Lock()
	defer db.mu.Unlock()
	old, replaced := db.byKey[key]
	db.byKey[key] = c
	if replaced && old != c {
		db.unindexLocked(old)
	}
	db.byGroup[string(c.IDContext())] = c
}

// Lookup returns the context stored under key.
func (db *DB) Lookup(key domain.CorrelationKey) (*secctx.CommonContext, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	c, ok := db.byKey[key]
	if !ok {
		return nil, domain.Errorf(domain.KindContextNotFound, "no context for %q", key)
	}
	return c, nil
}

// LookupGroup returns the context whose group identifier is gid.
func (db *DB) LookupGroup(gid []byte) (*secctx.CommonContext, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	c, ok := db.byGroup[string(gid)]
	if !ok {
		return nil, domain.Errorf(domain.KindContextNotFound, "no context for group %x", gid)
	}
	return c, nil
}

// LookupRecipient returns the registered recipient rid of group gid.
func (db *DB) LookupRecipient(rid, gid []byte) (*secctx.RecipientContext, error) {
	c, err := db.LookupGroup(gid)
	if err != nil {
		return nil, err
	}
	r, ok := c.Recipient(rid)
	if !ok {
		return nil, domain.Errorf(domain.KindContextNotFound, "no recipient %x in group %x", rid, gid)
	}
	return r, nil
}

// RemoveRecipient drops r from its group so the next message from that peer
// has to be derived again.
func (db *DB) RemoveRecipient(r *secctx.RecipientContext) {
	r.Common().RemoveRecipient(r)
}

// Remove drops the entry for key. The group index keeps the context while
// another key still refers to it.
func (db *DB) Remove(key domain.CorrelationKey) {
	db.mu.Lock()
	defer db.mu.Unlock()
	c, ok := db.byKey[key]
	if !ok {
		return
	}
	delete(db.byKey, key)
	db.unindexLocked(c)
}

func (db *DB) unindexLocked(c *secctx.CommonContext) {
	for _, other := range db.byKey {
		if other == c {
			return
		}
	}
	gid := string(c.IDContext())
	if db.byGroup[gid] == c {
		delete(db.byGroup, gid)
	}
}

// Range calls fn for every distinct context until fn returns false.
func (db *DB) Range(fn func(*secctx.CommonContext) bool) {
	db.mu.RLock()
	seen := make(map[*secctx.CommonContext]bool, len(db.byKey))
	list := make([]*secctx.CommonContext, 0, len(db.byKey))
	for _, c := range db.byKey {
		if !seen[c] {
			seen[c] = true
			list = append(list, c)
		}
	}
	db.mu.RUnlock()

	for _, c := range list {
		if !fn(c) {
			return
		}
	}
}

// Len returns the number of correlation keys.
func (db *DB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.byKey)
}
