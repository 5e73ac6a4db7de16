package oscore

import "groscore/internal/domain"

const payloadMarker = 0xff

// encodePlaintext lays out the inner message: code, then the payload marker
// and payload when there is one.
func encodePlaintext(code domain.Code, payload []byte) []byte {
	out := make([]byte, 0, 2+len(payload))
	out = append(out, byte(code))
	if len(payload) > 0 {
		out = append(out, payloadMarker)
		out = append(out, payload...)
	}
	return out
}

func decodePlaintext(b []byte) (domain.Code, []byte, error) {
	if len(b) == 0 {
		return 0, nil, domain.Errorf(domain.KindMalformedMessage, "empty plaintext")
	}
	code, rest := domain.Code(b[0]), b[1:]
	if len(rest) == 0 {
		return code, nil, nil
	}
	if rest[0] != payloadMarker || len(rest) == 1 {
		return 0, nil, domain.Errorf(domain.KindMalformedMessage, "inner options are not supported")
	}
	return code, rest[1:], nil
}
