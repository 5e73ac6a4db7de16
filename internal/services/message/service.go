package message

import (
	"gopkg.in/op/go-logging.v1"

	"groscore/internal/domain"
	"groscore/internal/log"
)

// Diagnostic payloads of error responses. They name the failure class only.
const (
	PayloadContextNotFound = "Security context not found"
	PayloadDecryption      = "Decryption failed"
	PayloadSignature       = "Countersignature verification failed"
	PayloadReplay          = "Replay detected"
	PayloadMalformed       = "Failed to decode COSE"
	PayloadInternal        = "Internal server error"
)

// Service runs handlers behind a session.
type Service struct {
	session domain.SessionService
	log     *logging.Logger
}

// New returns a message service over session. A nil backend discards logs.
func New(session domain.SessionService, backend *log.Backend) *Service {
	if backend == nil {
		backend = log.NewDiscard()
	}
	return &Service{session: session, log: backend.GetLogger("message")}
}

// Serve unprotects req from peer, hands the plaintext to h and protects the
// answer. Failures before h runs produce an unprotected error response; a
// nil answer from h means no response.
func (s *Service) Serve(peer domain.CorrelationKey, req *domain.Message, h domain.Handler) *domain.Message {
	plain, err := s.session.Unprotect(req, peer)
	if err != nil {
		return s.ErrorResponse(req, err)
	}
	answer := h(plain)
	if answer == nil {
		return nil
	}
	answer.Token = append([]byte(nil), plain.Token...)
	out, err := s.session.Protect(answer, peer)
	if err != nil {
		s.log.Errorf("protecting response to %q: %v", peer, err)
		return s.ErrorResponse(req, err)
	}
	return out
}

// ErrorResponse builds the diagnostic answer to req for err. It carries no
// OSCORE option and reveals only the failure class.
func (s *Service) ErrorResponse(req *domain.Message, err error) *domain.Message {
	code, payload := Diagnose(err)
	var token []byte
	if req != nil {
		token = append(token, req.Token...)
	}
	return &domain.Message{Code: code, Token: token, Payload: []byte(payload)}
}

// Diagnose maps err to a response code and diagnostic payload.
func Diagnose(err error) (domain.Code, string) {
	switch domain.KindOf(err) {
	case domain.KindContextNotFound:
		return domain.CodeUnauthorized, PayloadContextNotFound
	case domain.KindDecryptionFailed:
		return domain.CodeBadRequest, PayloadDecryption
	case domain.KindSignatureVerificationFailed:
		return domain.CodeBadRequest, PayloadSignature
	case domain.KindReplayDetected:
		return domain.CodeUnauthorized, PayloadReplay
	case domain.KindMalformedMessage:
		return domain.CodeBadOption, PayloadMalformed
	default:
		return domain.CodeInternalServerError, PayloadInternal
	}
}

// Compile-time assertion that Service implements domain.MessageService.
var _ domain.MessageService = (*Service)(nil)
