// Package store provides on-disk persistence for groscore.
//
// It contains concrete implementations of the domain storage interfaces:
//   - IdentityFileStore: the local countersignature key, sealed with a
//     passphrase (scrypt + ChaCha20-Poly1305).
//   - StateFileStore: sequence numbers and replay windows in a JSON file.
//   - BoltStateStore: the same state in a bbolt database.
//
// All methods are safe for concurrent use.
package store
