package cose_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"groscore/internal/cose"
)

func TestInfo_MatchesOSCOREVectors(t *testing.T) {
	// RFC 8613 appendix C.1.1: common IV and sender key info.
	iv, err := cose.Info([]byte{}, nil, cose.AlgAESCCM16_64_128, "IV", 13)
	require.NoError(t, err)
	require.Equal(t, "8540f60a6249560d", hex.EncodeToString(iv))

	key, err := cose.Info(nil, nil, cose.AlgAESCCM16_64_128, "Key", 16)
	require.NoError(t, err)
	require.Equal(t, "8540f60a634b657910", hex.EncodeToString(key))

	withCtx, err := cose.Info([]byte{0x01}, []byte{0x37, 0xcb, 0xf3, 0x21, 0x00, 0x17, 0xa2, 0xd3}, cose.AlgAESCCM16_64_128, "Key", 16)
	require.NoError(t, err)
	require.Equal(t, "85410148"+"37cbf3210017a2d3"+"0a634b657910", hex.EncodeToString(withCtx))
}

func TestDecodeKey(t *testing.T) {
	k, err := cose.ParseKey("pQMnAQEgBiFYIAaekSuDljrMWUG2NUaGfewQbluQUfLuFPO8XMlhrNQ6I1ggZHFNQaJAth2NgjUCcXqwiMn0r2/JhEVT5K1MQsxzUjk=")
	require.NoError(t, err)
	require.Equal(t, cose.KeyTypeOKP, k.KeyType)
	require.Equal(t, cose.AlgEdDSA, k.Algorithm)
	require.Equal(t, cose.CurveEd25519, k.Curve)
	require.True(t, k.IsPrivate())
	require.False(t, k.Public().IsPrivate())
	require.True(t, k.IsPrivate(), "Public must not modify the receiver")

	again, err := cose.ParseKey(k.String())
	require.NoError(t, err)
	require.Equal(t, k, again)

	b, err := k.MarshalBinary()
	require.NoError(t, err)
	fromHex, err := cose.ParseKey(hex.EncodeToString(b))
	require.NoError(t, err)
	require.Equal(t, k, fromHex)

	_, err = cose.ParseKey("not a key")
	require.ErrorIs(t, err, cose.ErrInvalidKey)

	bad := &cose.Key{KeyType: cose.KeyTypeEC2, Curve: cose.CurveP256, X: make([]byte, 32)}
	b, err = bad.MarshalBinary()
	require.NoError(t, err)
	_, err = cose.DecodeKey(b)
	require.ErrorIs(t, err, cose.ErrInvalidKey, "EC2 key without y")
}

func TestKey_MarshalRoundTrip(t *testing.T) {
	for name, k := range map[string]*cose.Key{
		"okp public": {KeyType: cose.KeyTypeOKP, Curve: cose.CurveEd25519, X: make([]byte, 32)},
		"okp private": {
			KeyType: cose.KeyTypeOKP, Algorithm: cose.AlgEdDSA, Curve: cose.CurveEd25519,
			KeyID: []byte{0x25}, X: make([]byte, 32), D: make([]byte, 32),
		},
		"ec2 public": {KeyType: cose.KeyTypeEC2, Curve: cose.CurveP256, X: make([]byte, 32), Y: make([]byte, 32)},
	} {
		t.Run(name, func(t *testing.T) {
			b, err := k.MarshalBinary()
			require.NoError(t, err)
			got, err := cose.DecodeKey(b)
			require.NoError(t, err)
			require.Equal(t, k, got)
			require.NotEmpty(t, k.String())
		})
	}
}

func TestValidateCountersign(t *testing.T) {
	par, parKey, err := cose.DefaultCountersignParams(cose.AlgEdDSA)
	require.NoError(t, err)
	require.Equal(t, []int{1}, par.AlgCapab)
	require.Equal(t, []int{1, 6}, par.KeyTypeCapab)
	require.NoError(t, cose.ValidateCountersign(cose.AlgEdDSA, par, parKey))

	// An EC2/P-256 key type cannot serve EdDSA.
	err = cose.ValidateCountersign(cose.AlgEdDSA, cose.CountersignParams{AlgCapab: []int{2}, KeyTypeCapab: []int{2, 1}}, []int{2, 1})
	require.ErrorIs(t, err, cose.ErrCapabilityMismatch)

	err = cose.ValidateCountersign(cose.AlgES256, cose.CountersignParams{AlgCapab: []int{2}, KeyTypeCapab: []int{2, 1}}, []int{1, 6})
	require.ErrorIs(t, err, cose.ErrCapabilityMismatch)

	_, _, err = cose.DefaultCountersignParams(cose.AlgA128GCM)
	require.ErrorIs(t, err, cose.ErrUnsupportedAlgorithm)
}

func TestParseAlgorithm(t *testing.T) {
	for in, want := range map[string]cose.Algorithm{
		"AES-CCM-16-64-128": cose.AlgAESCCM16_64_128,
		"eddsa":             cose.AlgEdDSA,
		"-7":                cose.AlgES256,
		"hkdf-sha-256":      cose.AlgHKDFSHA256,
	} {
		got, err := cose.ParseAlgorithm(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := cose.ParseAlgorithm("rot13")
	require.ErrorIs(t, err, cose.ErrUnsupportedAlgorithm)
}

func TestStructures_Shape(t *testing.T) {
	par, parKey, err := cose.DefaultCountersignParams(cose.AlgEdDSA)
	require.NoError(t, err)
	aad, err := cose.ExternalAAD{
		AEAD:              cose.AlgAESCCM16_64_128,
		SignAlg:           cose.AlgEdDSA,
		ParCountersign:    par,
		ParCountersignKey: parKey,
		RequestKID:        []byte{0x25},
		RequestPIV:        []byte{0x00},
	}.Encode()
	require.NoError(t, err)
	// [1, [10, -8, [[1], [1, 6]], [1, 6]], h'25', h'00', h'', h'']
	require.Equal(t, "86"+"01"+"84"+"0a"+"27"+"82"+"8101"+"820106"+"820106"+"4125"+"4100"+"40"+"40", hex.EncodeToString(aad))

	enc, err := cose.EncStructure(aad)
	require.NoError(t, err)
	require.Equal(t, "83"+"68"+hex.EncodeToString([]byte("Encrypt0"))+"40", hex.EncodeToString(enc[:11]))
}
