// Package oscore protects and unprotects individual messages under a group
// security context.
//
// Contents
//
//   - The OSCORE option value: flag byte, partial IV, kid context and kid
//     (Option, DecodeOption)
//   - AEAD nonce construction from the common IV, the identifier of whoever
//     produced the partial IV and the partial IV itself (Nonce)
//   - Request and response protection in group and pairwise mode
//     (ProtectRequest, UnprotectRequest, ProtectResponse, UnprotectResponse)
//
// # Unprotect order
//
// Inbound messages are checked in a fixed order and the first failure is
// returned: recipient lookup (or derivation from a registered public key),
// countersignature verification in group mode, AEAD decryption, and finally
// the replay window. The window and the recipient registry change only after
// every cryptographic check passed.
//
// The functions keep no state of their own; everything lives in the secctx
// contexts and in the Binding a request leaves behind for its responses.
package oscore
