// Package commands defines the groscore CLI.
//
// Commands
//
//   - keygen       Create the sealed countersignature key
//   - fingerprint  Print the fingerprint of the sealed key
//   - pubkey       Print the public COSE_Key for peers' configuration
//   - protect      Protect a request for a configured group
//   - unprotect    Unprotect a request and optionally answer it
//   - state        List persisted sequence numbers and replay windows
//
// Messages are read and printed as hex. Exchange bindings live in memory,
// so a response can only be verified by the process that sent the request;
// the CLI covers the request side and the serving side of an exchange.
package commands
