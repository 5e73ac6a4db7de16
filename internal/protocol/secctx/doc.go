// Package secctx holds the security context model of a group: one
// CommonContext per group owning the SenderContexts of the local identities
// and the RecipientContexts of remote peers.
//
// A CommonContext is immutable after construction except for its mode flags
// and its registries. Recipients are added eagerly with AddRecipient or
// derived on demand: Resolve returns an unregistered candidate when a public
// key for the identifier was registered with AddPublicKey, and Adopt
// installs it once the first message from that peer has been verified.
//
// Concurrency: all types are safe for concurrent use. Each SenderContext
// serialises its sequence counter and each RecipientContext its replay window
// and pairwise key cache; the CommonContext registries use a RWMutex.
package secctx
