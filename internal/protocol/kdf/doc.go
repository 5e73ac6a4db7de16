// Package kdf derives the symmetric material of a group security context.
//
// Every key comes from one HKDF step whose info is the CBOR array
//
//	[ id, id_context, alg_aead, type, L ]
//
// Sender and recipient keys take the master secret as input keying material
// and the master salt as salt, with id set to the owning member. The common
// IV uses an empty id and type "IV". Pairwise keys run a second HKDF step
// salted with the owner's group key over both public keys and their ECDH
// shared secret, so the owner's pairwise sender key equals the
// counterparty's pairwise recipient key for that owner.
//
// Derivation is deterministic and free of side effects.
package kdf
