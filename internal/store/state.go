package store

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"groscore/internal/domain"
)

// SenderEntry is one persisted sender counter.
type SenderEntry struct {
	Group  domain.ID
	Sender domain.ID
	State  domain.SenderState
}

// WindowEntry is one persisted replay window.
type WindowEntry struct {
	Group     domain.ID
	Recipient domain.ID
	State     domain.WindowState
}

// Snapshot lists everything a state store holds, ordered by group and id.
type Snapshot struct {
	Senders []SenderEntry
	Windows []WindowEntry
}

// Dumper is implemented by state stores that can list their contents.
type Dumper interface {
	Dump() (Snapshot, error)
}

func (s *Snapshot) sort() {
	sort.Slice(s.Senders, func(i, j int) bool {
		return entryKey(s.Senders[i].Group, s.Senders[i].Sender) < entryKey(s.Senders[j].Group, s.Senders[j].Sender)
	})
	sort.Slice(s.Windows, func(i, j int) bool {
		return entryKey(s.Windows[i].Group, s.Windows[i].Recipient) < entryKey(s.Windows[j].Group, s.Windows[j].Recipient)
	})
}

// entryKey is the textual key "<group hex>/<id hex>".
func entryKey(group, id domain.ID) string {
	return group.String() + "/" + id.String()
}

func parseEntryKey(k string) (group, id domain.ID, err error) {
	g, r, ok := strings.Cut(k, "/")
	if !ok {
		return nil, nil, fmt.Errorf("store: malformed state key %q", k)
	}
	if group, err = hex.DecodeString(g); err != nil {
		return nil, nil, fmt.Errorf("store: malformed state key %q: %w", k, err)
	}
	if id, err = hex.DecodeString(r); err != nil {
		return nil, nil, fmt.Errorf("store: malformed state key %q: %w", k, err)
	}
	return group, id, nil
}
