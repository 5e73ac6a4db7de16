package oscore

import (
	"fmt"

	"groscore/internal/cose"
	"groscore/internal/crypto"
	"groscore/internal/domain"
	"groscore/internal/protocol/secctx"
)

// ProtectRequest encrypts msg from sender s. target selects the recipient of
// a pairwise request and may be nil for group requests.
func ProtectRequest(s *secctx.SenderContext, target *secctx.RecipientContext, msg *domain.Message) (*domain.Message, *Binding, error) {
	c := s.Common()
	mode, err := c.RequestMode(target)
	if err != nil {
		return nil, nil, err
	}
	key := s.Key()
	if mode == domain.PairwiseRequest {
		if key, _, err = target.PairwiseKeys(s); err != nil {
			return nil, nil, domain.Wrap(domain.KindConfiguration, "pairwise key", err)
		}
	}

	seq, err := s.NextSequenceNumber()
	if err != nil {
		return nil, nil, err
	}
	kid, piv := s.ID(), EncodePIV(seq)
	nonce, err := Nonce(c.CommonIV(), kid, piv)
	if err != nil {
		return nil, nil, err
	}

	payload, err := seal(c, s, mode, key, nonce, c.ExternalAAD(kid, piv), msg)
	if err != nil {
		return nil, nil, err
	}
	opt, err := Option{
		Group:      mode.IsGroup(),
		PIV:        piv,
		KIDContext: c.IDContext(),
		KID:        kid,
		HasKID:     true,
	}.Encode()
	if err != nil {
		return nil, nil, err
	}

	out := &domain.Message{
		Code:        domain.CodePOST,
		Token:       append([]byte(nil), msg.Token...),
		Payload:     payload,
		Security:    opt,
		HasSecurity: true,
	}
	b := &Binding{Common: c, Mode: mode, KID: kid, PIV: piv, Sender: s}
	return out, b, nil
}

// ProtectResponse encrypts msg as the local answer to the request behind b.
func ProtectResponse(b *Binding, msg *domain.Message) (*domain.Message, error) {
	c := b.Common
	s, err := c.Sender()
	if err != nil {
		return nil, err
	}
	mode, err := c.ResponseMode(b.Mode, b.Peer)
	if err != nil {
		return nil, err
	}
	key := s.Key()
	if mode == domain.PairwiseResponse {
		if key, _, err = b.Peer.PairwiseKeys(s); err != nil {
			return nil, domain.Wrap(domain.KindConfiguration, "pairwise key", err)
		}
	}

	// Without a partial IV of its own the response reuses the request nonce.
	idPIV, nonceSrc := b.KID, b.PIV
	var piv []byte
	if c.ResponsesIncludePartialIV() {
		seq, err := s.NextSequenceNumber()
		if err != nil {
			return nil, err
		}
		piv = EncodePIV(seq)
		idPIV, nonceSrc = s.ID(), piv
	}
	nonce, err := Nonce(c.CommonIV(), idPIV, nonceSrc)
	if err != nil {
		return nil, err
	}

	payload, err := seal(c, s, mode, key, nonce, c.ExternalAAD(b.KID, b.PIV), msg)
	if err != nil {
		return nil, err
	}
	opt, err := Option{Group: mode.IsGroup(), PIV: piv, KID: s.ID(), HasKID: true}.Encode()
	if err != nil {
		return nil, err
	}
	return &domain.Message{
		Code:        domain.CodeChanged,
		Token:       append([]byte(nil), msg.Token...),
		Payload:     payload,
		Security:    opt,
		HasSecurity: true,
	}, nil
}

// seal encrypts the inner message and, in group mode, appends the
// countersignature over the external AAD and ciphertext.
func seal(c *secctx.CommonContext, s *secctx.SenderContext, mode domain.Mode, key, nonce []byte, ext cose.ExternalAAD, msg *domain.Message) ([]byte, error) {
	extAAD, err := ext.Encode()
	if err != nil {
		return nil, err
	}
	aad, err := cose.EncStructure(extAAD)
	if err != nil {
		return nil, err
	}
	aead, err := crypto.NewAEAD(c.AEAD(), key)
	if err != nil {
		return nil, err
	}
	ct := aead.Seal(nil, nonce, encodePlaintext(msg.Code, msg.Payload), aad)
	if !mode.IsGroup() {
		return ct, nil
	}

	tbs, err := cose.CountersignStructure(extAAD, ct)
	if err != nil {
		return nil, err
	}
	sig, err := s.PrivateKey().Sign(tbs)
	if err != nil {
		return nil, fmt.Errorf("countersign: %w", err)
	}
	return append(ct, sig...), nil
}
