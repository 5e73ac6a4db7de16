package types

// Mode is the protection mode resolved once per protect or unprotect call.
type Mode uint8

const (
	GroupRequest Mode = iota + 1
	PairwiseRequest
	GroupResponse
	PairwiseResponse
)

// IsGroup reports whether m uses the group keys and a countersignature.
func (m Mode) IsGroup() bool { return m == GroupRequest || m == GroupResponse }

// IsRequest reports whether m protects a request.
func (m Mode) IsRequest() bool { return m == GroupRequest || m == PairwiseRequest }

func (m Mode) String() string {
	switch m {
	case GroupRequest:
		return "group-request"
	case PairwiseRequest:
		return "pairwise-request"
	case GroupResponse:
		return "group-response"
	case PairwiseResponse:
		return "pairwise-response"
	default:
		return "unknown"
	}
}
