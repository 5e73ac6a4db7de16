package secctx

import "groscore/internal/domain"

// RequestMode picks the mode for an outgoing request. Pairwise mode needs the
// flag and a target; a target without a public key is a configuration error.
func (c *CommonContext) RequestMode(target *RecipientContext) (domain.Mode, error) {
	if target == nil || !c.PairwiseRequests() {
		return domain.GroupRequest, nil
	}
	if target.PublicKey() == nil {
		return 0, domain.Wrap(domain.KindConfiguration, "pairwise target "+domain.ID(target.id).String(), ErrNoPublicKey)
	}
	return domain.PairwiseRequest, nil
}

// ResponseMode picks the mode for a response to a request received in
// requestMode from requester. Pairwise requests always get pairwise responses.
func (c *CommonContext) ResponseMode(requestMode domain.Mode, requester *RecipientContext) (domain.Mode, error) {
	if requestMode != domain.PairwiseRequest && !c.PairwiseResponses() {
		return domain.GroupResponse, nil
	}
	if requester.PublicKey() == nil {
		return 0, domain.Wrap(domain.KindConfiguration, "pairwise response to "+domain.ID(requester.id).String(), ErrNoPublicKey)
	}
	return domain.PairwiseResponse, nil
}
