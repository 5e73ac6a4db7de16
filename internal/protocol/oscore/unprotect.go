package oscore

import (
	"groscore/internal/cose"
	"groscore/internal/crypto"
	"groscore/internal/domain"
	"groscore/internal/protocol/secctx"
)

// UnprotectRequest verifies and decrypts a request received under group c.
// The returned Binding is needed to protect the response.
func UnprotectRequest(c *secctx.CommonContext, msg *domain.Message) (*domain.Message, *Binding, error) {
	opt, err := securityOption(msg)
	if err != nil {
		return nil, nil, err
	}
	if !opt.HasKID || len(opt.PIV) == 0 {
		return nil, nil, domain.Errorf(domain.KindMalformedMessage, "request without kid or partial IV")
	}
	if opt.KIDContext != nil && !crypto.Equal(opt.KIDContext, c.IDContext()) {
		return nil, nil, domain.Errorf(domain.KindContextNotFound, "kid context %x", opt.KIDContext)
	}
	seq, err := DecodePIV(opt.PIV)
	if err != nil {
		return nil, nil, err
	}

	r, res, err := resolve(c, opt.KID)
	if err != nil {
		return nil, nil, err
	}
	mode := domain.PairwiseRequest
	if opt.Group {
		mode = domain.GroupRequest
	}
	var local *secctx.SenderContext
	if !opt.Group {
		if local, err = c.Sender(); err != nil {
			return nil, nil, err
		}
	}
	nonce, err := Nonce(c.CommonIV(), opt.KID, opt.PIV)
	if err != nil {
		return nil, nil, domain.Wrap(domain.KindMalformedMessage, "", err)
	}

	pt, err := open(c, r, local, opt.Group, nonce, c.ExternalAAD(opt.KID, opt.PIV), msg.Payload)
	if err != nil {
		return nil, nil, err
	}
	if res == secctx.Derivable {
		r, _ = c.Adopt(r)
	}
	if err := r.AcceptSequence(seq); err != nil {
		return nil, nil, err
	}

	out, err := plainMessage(msg, pt)
	if err != nil {
		return nil, nil, err
	}
	b := &Binding{Common: c, Mode: mode, KID: opt.KID, PIV: opt.PIV, Peer: r}
	return out, b, nil
}

// UnprotectResponse verifies and decrypts one response to the request behind
// b. Several responders may answer the same request.
func UnprotectResponse(b *Binding, msg *domain.Message) (*domain.Message, error) {
	opt, err := securityOption(msg)
	if err != nil {
		return nil, err
	}
	if !opt.HasKID {
		return nil, domain.Errorf(domain.KindMalformedMessage, "response without kid")
	}
	c := b.Common
	r, res, err := resolve(c, opt.KID)
	if err != nil {
		return nil, err
	}

	idPIV, piv := b.KID, b.PIV
	if len(opt.PIV) > 0 {
		idPIV, piv = opt.KID, opt.PIV
	}
	nonce, err := Nonce(c.CommonIV(), idPIV, piv)
	if err != nil {
		return nil, domain.Wrap(domain.KindMalformedMessage, "", err)
	}

	pt, err := open(c, r, b.Sender, opt.Group, nonce, c.ExternalAAD(b.KID, b.PIV), msg.Payload)
	if err != nil {
		return nil, err
	}
	if res == secctx.Derivable {
		r, _ = c.Adopt(r)
	}
	// A response without its own partial IV uses the request nonce, so each
	// responder gets one such response per request.
	if len(opt.PIV) == 0 {
		if !b.claim(opt.KID) {
			return nil, domain.Errorf(domain.KindReplayDetected, "second response from %x to request %x", opt.KID, b.PIV)
		}
	} else {
		seq, err := DecodePIV(opt.PIV)
		if err != nil {
			return nil, err
		}
		if err := r.AcceptSequence(seq); err != nil {
			return nil, err
		}
	}
	return plainMessage(msg, pt)
}

func securityOption(msg *domain.Message) (Option, error) {
	if !msg.HasSecurity {
		return Option{}, domain.Errorf(domain.KindMalformedMessage, "message carries no OSCORE option")
	}
	return DecodeOption(msg.Security)
}

func resolve(c *secctx.CommonContext, kid []byte) (*secctx.RecipientContext, secctx.Resolution, error) {
	r, res, err := c.Resolve(kid)
	if err != nil {
		return nil, res, err
	}
	if res == secctx.Unknown {
		return nil, res, domain.Errorf(domain.KindContextNotFound, "no recipient context or public key for kid %x", kid)
	}
	return r, res, nil
}

// open runs signature verification (group mode) and decryption.
func open(c *secctx.CommonContext, r *secctx.RecipientContext, local *secctx.SenderContext, group bool, nonce []byte, ext cose.ExternalAAD, payload []byte) ([]byte, error) {
	extAAD, err := ext.Encode()
	if err != nil {
		return nil, err
	}
	ct, key := payload, r.Key()
	if group {
		n := c.CountersignAlg().SignatureSize()
		if len(payload) < n {
			return nil, domain.Errorf(domain.KindSignatureVerificationFailed, "payload shorter than a countersignature")
		}
		var sig []byte
		ct, sig = payload[:len(payload)-n], payload[len(payload)-n:]
		pub := r.PublicKey()
		if pub == nil {
			return nil, domain.Wrap(domain.KindSignatureVerificationFailed, "", secctx.ErrNoPublicKey)
		}
		tbs, err := cose.CountersignStructure(extAAD, ct)
		if err != nil {
			return nil, err
		}
		if !pub.Verify(tbs, sig) {
			return nil, domain.Errorf(domain.KindSignatureVerificationFailed, "kid %s", r.ID())
		}
	} else {
		if local == nil {
			return nil, domain.Errorf(domain.KindDecryptionFailed, "no local sender for pairwise mode")
		}
		if _, key, err = r.PairwiseKeys(local); err != nil {
			return nil, domain.Wrap(domain.KindDecryptionFailed, "pairwise key", err)
		}
	}

	aad, err := cose.EncStructure(extAAD)
	if err != nil {
		return nil, err
	}
	aead, err := crypto.NewAEAD(c.AEAD(), key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, nonce, ct, aad)
	if err != nil {
		return nil, domain.Errorf(domain.KindDecryptionFailed, "kid %s", r.ID())
	}
	return pt, nil
}

func plainMessage(msg *domain.Message, pt []byte) (*domain.Message, error) {
	code, payload, err := decodePlaintext(pt)
	if err != nil {
		return nil, err
	}
	return &domain.Message{
		Code:    code,
		Token:   append([]byte(nil), msg.Token...),
		Payload: payload,
	}, nil
}
