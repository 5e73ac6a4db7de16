package types

// SenderState is the persisted form of a Sender Context.
type SenderState struct {
	Sequence uint64 `json:"seq" cbor:"1,keyasint"`
}

// WindowState is the persisted form of a replay window. Bitmap bit i of
// word i/64 marks sequence number High-i as accepted.
type WindowState struct {
	High   uint64   `json:"high" cbor:"1,keyasint"`
	Seen   bool     `json:"seen" cbor:"2,keyasint"`
	Size   int      `json:"size" cbor:"3,keyasint"`
	Bitmap []uint64 `json:"bitmap" cbor:"4,keyasint"`
}
