package domain

import (
	interfaces "groscore/internal/domain/interfaces"
	types "groscore/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Fingerprint    = types.Fingerprint
	ID             = types.ID
	CorrelationKey = types.CorrelationKey
	Identity       = types.Identity
	Code           = types.Code
	Message        = types.Message
	Mode           = types.Mode
	SenderState    = types.SenderState
	WindowState    = types.WindowState
	ErrorKind      = types.ErrorKind
	SecurityError  = types.SecurityError
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	IdentityService = interfaces.IdentityService
	SessionService  = interfaces.SessionService
	MessageService  = interfaces.MessageService
	Handler         = interfaces.Handler
	IdentityStore   = interfaces.IdentityStore
	StateStore      = interfaces.StateStore
)

const (
	GroupRequest     = types.GroupRequest
	PairwiseRequest  = types.PairwiseRequest
	GroupResponse    = types.GroupResponse
	PairwiseResponse = types.PairwiseResponse
)

const (
	CodeGET                 = types.CodeGET
	CodePOST                = types.CodePOST
	CodePUT                 = types.CodePUT
	CodeDELETE              = types.CodeDELETE
	CodeFETCH               = types.CodeFETCH
	CodeChanged             = types.CodeChanged
	CodeContent             = types.CodeContent
	CodeBadRequest          = types.CodeBadRequest
	CodeUnauthorized        = types.CodeUnauthorized
	CodeBadOption           = types.CodeBadOption
	CodeInternalServerError = types.CodeInternalServerError
)

const (
	KindConfiguration               = types.KindConfiguration
	KindDuplicateIdentifier         = types.KindDuplicateIdentifier
	KindContextNotFound             = types.KindContextNotFound
	KindDecryptionFailed            = types.KindDecryptionFailed
	KindSignatureVerificationFailed = types.KindSignatureVerificationFailed
	KindReplayDetected              = types.KindReplayDetected
	KindMalformedMessage            = types.KindMalformedMessage
)

// Error sentinels and constructors, see types.SecurityError.
var (
	ErrConfiguration               = types.ErrConfiguration
	ErrDuplicateIdentifier         = types.ErrDuplicateIdentifier
	ErrContextNotFound             = types.ErrContextNotFound
	ErrDecryptionFailed            = types.ErrDecryptionFailed
	ErrSignatureVerificationFailed = types.ErrSignatureVerificationFailed
	ErrReplayDetected              = types.ErrReplayDetected
	ErrMalformedMessage            = types.ErrMalformedMessage

	Errorf = types.Errorf
	Wrap   = types.Wrap
	KindOf = types.KindOf
)
