// Package crypto adapts the primitives the group security layer consumes.
//
// Contents
//
//   - AEAD construction for the COSE content encryption algorithms
//     (NewAEAD): AES-CCM, AES-GCM and ChaCha20/Poly1305
//   - HKDF extract-and-expand for the COSE HKDF algorithms (HKDF)
//   - Countersignature keys for EdDSA (Ed25519) and ES256 (P-256), parsed from
//     and exported to COSE_Key (PrivateKeyFromCOSE, PublicKeyFromCOSE)
//   - Static-static ECDH between two countersignature keys (SharedSecret);
//     Ed25519 keys are mapped to X25519 first
//   - Constant-time comparison, hex/base64 helpers and short fingerprints
//
// # Notes
//
// Nothing here keeps state. Callers own every returned secret and should zero
// it with memzero.Zero when it is no longer needed.
package crypto
