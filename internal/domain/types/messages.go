package types

import "fmt"

// Code is a CoAP style message code: three bits of class, five bits of detail.
type Code uint8

const (
	CodeEmpty  Code = 0x00
	CodeGET    Code = 0x01
	CodePOST   Code = 0x02
	CodePUT    Code = 0x03
	CodeDELETE Code = 0x04
	CodeFETCH  Code = 0x05

	CodeChanged Code = 0x44 // 2.04
	CodeContent Code = 0x45 // 2.05

	CodeBadRequest   Code = 0x80 // 4.00
	CodeUnauthorized Code = 0x81 // 4.01
	CodeBadOption    Code = 0x82 // 4.02

	CodeInternalServerError Code = 0xa0 // 5.00
)

// IsRequest reports whether c is a request method code.
func (c Code) IsRequest() bool { return c != CodeEmpty && c>>5 == 0 }

// String renders the code as "class.detail".
func (c Code) String() string { return fmt.Sprintf("%d.%02d", c>>5, c&0x1f) }

// Message is the transport's view of a request or response.
//
// Security carries the OSCORE option value. HasSecurity distinguishes an
// absent option from an empty one. Target names the recipient a pairwise
// request is addressed to; it is local routing data and never transmitted.
type Message struct {
	Code        Code
	Token       []byte
	Payload     []byte
	Security    []byte
	HasSecurity bool
	Target      ID
}

// Clone returns a deep copy of m.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	out := *m
	out.Token = append([]byte(nil), m.Token...)
	out.Payload = append([]byte(nil), m.Payload...)
	out.Security = append([]byte(nil), m.Security...)
	out.Target = append(ID(nil), m.Target...)
	return &out
}
