package oscore

import (
	"fmt"

	"groscore/internal/domain"
)

// EncodePIV returns the shortest big-endian encoding of seq; zero encodes as
// a single zero byte.
func EncodePIV(seq uint64) []byte {
	var b [8]byte
	n := 0
	for v := seq; v > 0; v >>= 8 {
		n++
	}
	if n == 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		b[7-i] = byte(seq >> (8 * i))
	}
	return append([]byte(nil), b[8-n:]...)
}

// DecodePIV parses a partial IV back into a sequence number.
func DecodePIV(piv []byte) (uint64, error) {
	if len(piv) == 0 || len(piv) > maxPIVLen {
		return 0, domain.Errorf(domain.KindMalformedMessage, "partial IV of %d bytes", len(piv))
	}
	var seq uint64
	for _, c := range piv {
		seq = seq<<8 | uint64(c)
	}
	return seq, nil
}

// Nonce builds the AEAD nonce
//
//	commonIV XOR ( len(idPIV) || pad(idPIV, N-6) || pad(piv, 5) )
//
// where idPIV identifies the endpoint that generated piv.
func Nonce(commonIV, idPIV, piv []byte) ([]byte, error) {
	n := len(commonIV)
	if len(idPIV) > n-6 {
		return nil, fmt.Errorf("identifier of %d bytes does not fit a %d byte nonce", len(idPIV), n)
	}
	if len(piv) > maxPIVLen {
		return nil, fmt.Errorf("partial IV of %d bytes", len(piv))
	}
	out := make([]byte, n)
	out[0] = byte(len(idPIV))
	copy(out[n-maxPIVLen-len(idPIV):n-maxPIVLen], idPIV)
	copy(out[n-len(piv):], piv)
	for i := range out {
		out[i] ^= commonIV[i]
	}
	return out, nil
}
