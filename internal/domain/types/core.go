package types

import "encoding/hex"

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// ID is a sender, recipient or group identifier. Identifiers are opaque byte
// strings and may be empty.
type ID []byte

// String returns the lowercase hex form of the identifier.
func (id ID) String() string { return hex.EncodeToString(id) }

// CorrelationKey identifies the peer or session a message belongs to, for
// example a request URI on the client or a peer address on the server.
type CorrelationKey string

// String returns the string form of the correlation key.
func (k CorrelationKey) String() string { return string(k) }
