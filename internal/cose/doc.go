// Package cose holds the small subset of COSE (RFC 9052/9053) the group
// security layer needs: algorithm and key type identifiers, COSE_Key
// encoding, and the CBOR structures fed to HKDF, the AEAD and the
// countersignature.
//
// All encoding goes through fxamacker/cbor. Byte strings that must be present
// on the wire are normalised to h'' rather than null.
package cose
