// Package message serves protected requests on top of a session and turns
// protection failures into unprotected diagnostic responses.
package message
