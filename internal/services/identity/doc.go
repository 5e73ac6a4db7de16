// Package identity manages creation, encryption and loading of the local
// countersignature key.
//
// It enforces the passphrase policy, generates EdDSA or ES256 key pairs as
// COSE_Keys, and persists them via the domain.IdentityStore.
package identity
