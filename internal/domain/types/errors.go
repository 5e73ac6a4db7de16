package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a SecurityError. Every kind is a distinct outcome the
// peer can observe.
type ErrorKind uint16

const (
	KindConfiguration ErrorKind = iota + 1
	KindDuplicateIdentifier
	KindContextNotFound
	KindDecryptionFailed
	KindSignatureVerificationFailed
	KindReplayDetected
	KindMalformedMessage
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindDuplicateIdentifier:
		return "duplicate identifier"
	case KindContextNotFound:
		return "security context not found"
	case KindDecryptionFailed:
		return "decryption failed"
	case KindSignatureVerificationFailed:
		return "countersignature verification failed"
	case KindReplayDetected:
		return "replay detected"
	case KindMalformedMessage:
		return "malformed message"
	default:
		return fmt.Sprintf("error kind %d", uint16(k))
	}
}

// SecurityError is returned by every context and protect/unprotect operation.
type SecurityError struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *SecurityError) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SecurityError) Unwrap() error { return e.Err }

// Is matches any SecurityError of the same kind, so the package sentinels
// can be used with errors.Is.
func (e *SecurityError) Is(target error) bool {
	t, ok := target.(*SecurityError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrConfiguration               = &SecurityError{Kind: KindConfiguration}
	ErrDuplicateIdentifier         = &SecurityError{Kind: KindDuplicateIdentifier}
	ErrContextNotFound             = &SecurityError{Kind: KindContextNotFound}
	ErrDecryptionFailed            = &SecurityError{Kind: KindDecryptionFailed}
	ErrSignatureVerificationFailed = &SecurityError{Kind: KindSignatureVerificationFailed}
	ErrReplayDetected              = &SecurityError{Kind: KindReplayDetected}
	ErrMalformedMessage            = &SecurityError{Kind: KindMalformedMessage}
)

// Errorf builds a SecurityError of kind k with a formatted detail.
func Errorf(k ErrorKind, format string, args ...any) *SecurityError {
	return &SecurityError{Kind: k, Detail: fmt.Sprintf(format, args...)}
}

// Wrap builds a SecurityError of kind k around err.
func Wrap(k ErrorKind, detail string, err error) *SecurityError {
	return &SecurityError{Kind: k, Detail: detail, Err: err}
}

// KindOf returns the kind of the first SecurityError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var se *SecurityError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
