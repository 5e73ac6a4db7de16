package oscore_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"groscore/internal/domain"
	"groscore/internal/protocol/oscore"
	"groscore/internal/protocol/secctx"
)

func TestOption_Vectors(t *testing.T) {
	ctx, _ := hex.DecodeString("37cbf3210017a2d3")
	cases := []struct {
		name string
		opt  oscore.Option
		hex  string
	}{
		{"empty", oscore.Option{}, ""},
		{"rfc8613 request", oscore.Option{PIV: []byte{0x14}, HasKID: true, KID: []byte{}}, "0914"},
		{"rfc8613 with context", oscore.Option{PIV: []byte{0x14}, HasKID: true, KID: []byte{0x00}, KIDContext: ctx}, "19140837cbf3210017a2d300"},
		{"group request", oscore.Option{Group: true, PIV: []byte{0x00}, HasKID: true, KID: []byte{0x25}, KIDContext: []byte("Dal")}, "3900" + "03" + "44616c" + "25"},
		{"group response no piv", oscore.Option{Group: true, HasKID: true, KID: []byte{0x77}}, "2877"},
		{"pairwise response with piv", oscore.Option{PIV: []byte{0x01, 0x02}, HasKID: true, KID: []byte{0x77}}, "0a010277"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := tc.opt.Encode()
			require.NoError(t, err)
			require.Equal(t, tc.hex, hex.EncodeToString(b))

			got, err := oscore.DecodeOption(b)
			require.NoError(t, err)
			require.Equal(t, tc.opt.Group, got.Group)
			require.Equal(t, tc.opt.HasKID, got.HasKID)
			require.Equal(t, len(tc.opt.PIV), len(got.PIV))
			if tc.opt.HasKID {
				require.Equal(t, tc.opt.KID, got.KID)
			}
			require.Equal(t, tc.opt.KIDContext, got.KIDContext)
		})
	}
}

func TestOption_Malformed(t *testing.T) {
	for name, in := range map[string]string{
		"reserved bit":       "8914",
		"piv length 6":       "06",
		"truncated piv":      "0300",
		"truncated context":  "1114" + "05" + "0102",
		"trailing without k": "0114ff",
	} {
		b, _ := hex.DecodeString(in)
		_, err := oscore.DecodeOption(b)
		require.ErrorIs(t, err, domain.ErrMalformedMessage, name)
	}
}

func TestPIV_Encoding(t *testing.T) {
	for seq, want := range map[uint64]string{
		0:                        "00",
		1:                        "01",
		255:                      "ff",
		256:                      "0100",
		secctx.MaxSequenceNumber: "ffffffffff",
	} {
		piv := oscore.EncodePIV(seq)
		require.Equal(t, want, hex.EncodeToString(piv))
		back, err := oscore.DecodePIV(piv)
		require.NoError(t, err)
		require.Equal(t, seq, back)
	}
	_, err := oscore.DecodePIV(nil)
	require.ErrorIs(t, err, domain.ErrMalformedMessage)
	_, err = oscore.DecodePIV(make([]byte, 6))
	require.ErrorIs(t, err, domain.ErrMalformedMessage)
}

// RFC 8613 appendix C.1.1 and C.4.
func TestNonce_RFC8613(t *testing.T) {
	iv, _ := hex.DecodeString("4622d4dd6d944168eefb54987c")

	n, err := oscore.Nonce(iv, []byte{}, []byte{0x00})
	require.NoError(t, err)
	require.Equal(t, "4622d4dd6d944168eefb54987c", hex.EncodeToString(n))

	n, err = oscore.Nonce(iv, []byte{0x01}, []byte{0x00})
	require.NoError(t, err)
	require.Equal(t, "4722d4dd6d944169eefb54987c", hex.EncodeToString(n))

	n, err = oscore.Nonce(iv, []byte{}, []byte{0x14})
	require.NoError(t, err)
	require.Equal(t, "4622d4dd6d944168eefb549868", hex.EncodeToString(n))

	_, err = oscore.Nonce(iv, make([]byte, 8), []byte{0x00})
	require.Error(t, err)
}
