// Package replay implements the per-recipient anti-replay window.
//
// A Window tracks the highest accepted sequence number H and a bitmap of the
// W numbers at and below it. A number above H always passes and slides the
// window; a number in (H-W, H] passes once; anything older is rejected.
//
// Check inspects without committing and Accept commits. Callers run
// the cryptographic checks between the two so that forged traffic never moves
// the window.
//
// Concurrency: Window is NOT safe for concurrent use. The owning recipient
// context serialises access.
package replay
