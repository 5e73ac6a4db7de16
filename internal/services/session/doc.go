// Package session is the per-endpoint entry point for protecting and
// unprotecting messages.
//
// A Service owns a context database, the request/response bindings of open
// exchanges, and an optional state store for sequence numbers and replay
// windows. The transport calls Protect before sending and Unprotect after
// receiving; correlation keys tell the service which peer or request URI a
// message belongs to.
package session
