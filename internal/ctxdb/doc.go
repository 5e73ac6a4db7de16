// Package ctxdb maps correlation keys (request URIs, peer addresses) to
// group security contexts and indexes them by group identifier.
package ctxdb
