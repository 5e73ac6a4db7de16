package oscore

import (
	"golang.org/x/crypto/cryptobyte"

	"groscore/internal/domain"
)

const (
	flagPIVMask    = 0x07
	flagKID        = 0x08
	flagKIDContext = 0x10
	flagGroup      = 0x20
	flagReserved   = 0xc0

	maxPIVLen = 5
)

// Option is the decoded OSCORE option value.
type Option struct {
	Group      bool
	PIV        []byte
	KIDContext []byte // nil when absent
	KID        []byte
	HasKID     bool
}

// Encode serialises o. An option with no fields set encodes as the empty
// byte string.
func (o Option) Encode() ([]byte, error) {
	if len(o.PIV) > maxPIVLen {
		return nil, domain.Errorf(domain.KindMalformedMessage, "partial IV of %d bytes", len(o.PIV))
	}
	flag := byte(len(o.PIV))
	if o.HasKID {
		flag |= flagKID
	}
	if o.KIDContext != nil {
		flag |= flagKIDContext
	}
	if o.Group {
		flag |= flagGroup
	}
	if flag == 0 {
		return []byte{}, nil
	}

	var b cryptobyte.Builder
	b.AddUint8(flag)
	b.AddBytes(o.PIV)
	if o.KIDContext != nil {
		b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) { b.AddBytes(o.KIDContext) })
	}
	if o.HasKID {
		b.AddBytes(o.KID)
	}
	out, err := b.Bytes()
	if err != nil {
		return nil, domain.Wrap(domain.KindMalformedMessage, "encode option", err)
	}
	return out, nil
}

// DecodeOption parses an OSCORE option value.
func DecodeOption(v []byte) (Option, error) {
	var o Option
	if len(v) == 0 {
		return o, nil
	}
	s := cryptobyte.String(v)
	var flag uint8
	s.ReadUint8(&flag)
	if flag&flagReserved != 0 {
		return o, domain.Errorf(domain.KindMalformedMessage, "reserved flag bits %#02x", flag)
	}
	n := int(flag & flagPIVMask)
	if n > maxPIVLen {
		return o, domain.Errorf(domain.KindMalformedMessage, "partial IV length %d", n)
	}
	if n > 0 && !s.ReadBytes(&o.PIV, n) {
		return o, domain.Errorf(domain.KindMalformedMessage, "truncated partial IV")
	}
	if flag&flagKIDContext != 0 {
		var ctx cryptobyte.String
		if !s.ReadUint8LengthPrefixed(&ctx) {
			return o, domain.Errorf(domain.KindMalformedMessage, "truncated kid context")
		}
		o.KIDContext = append([]byte{}, ctx...)
	}
	o.Group = flag&flagGroup != 0
	o.HasKID = flag&flagKID != 0
	switch {
	case o.HasKID:
		o.KID = append([]byte{}, s...)
	case !s.Empty():
		return o, domain.Errorf(domain.KindMalformedMessage, "%d trailing bytes without kid flag", len(s))
	}
	return o, nil
}
