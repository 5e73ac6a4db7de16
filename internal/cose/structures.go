package cose

import "github.com/fxamacker/cbor/v2"

const (
	// OSCOREVersion is the oscore_version element of the external AAD.
	OSCOREVersion = 1

	contextEncrypt0    = "Encrypt0"
	contextCountersign = "CounterSignature0"
)

// bstr keeps an absent byte string encoding as h'' instead of null.
func bstr(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

// Info encodes the HKDF info array
//
//	[ id : bstr, id_context : bstr / nil, alg_aead : int, type : tstr, L : uint ]
func Info(id, idContext []byte, aead Algorithm, typ string, length int) ([]byte, error) {
	var idctx any
	if idContext != nil {
		idctx = idContext
	}
	return cbor.Marshal([]any{bstr(id), idctx, int(aead), typ, uint(length)})
}

// ExternalAAD is the group variant of the OSCORE external_aad.
type ExternalAAD struct {
	AEAD              Algorithm
	SignAlg           Algorithm
	ParCountersign    CountersignParams
	ParCountersignKey []int
	RequestKID        []byte
	RequestPIV        []byte
	RequestKIDContext []byte
}

// Encode returns
//
//	[ oscore_version, [alg_aead, alg_countersign, par_countersign, par_countersign_key],
//	  request_kid, request_piv, options, request_kid_context ]
func (a ExternalAAD) Encode() ([]byte, error) {
	algs := []any{
		int(a.AEAD),
		int(a.SignAlg),
		[]any{a.ParCountersign.AlgCapab, a.ParCountersign.KeyTypeCapab},
		a.ParCountersignKey,
	}
	return cbor.Marshal([]any{
		OSCOREVersion,
		algs,
		bstr(a.RequestKID),
		bstr(a.RequestPIV),
		[]byte{},
		bstr(a.RequestKIDContext),
	})
}

// EncStructure wraps an encoded external AAD into the AEAD associated data
// ["Encrypt0", h'', external_aad].
func EncStructure(externalAAD []byte) ([]byte, error) {
	return cbor.Marshal([]any{contextEncrypt0, []byte{}, bstr(externalAAD)})
}

// CountersignStructure is the to-be-signed input
// ["CounterSignature0", h'', h'', external_aad, ciphertext].
func CountersignStructure(externalAAD, ciphertext []byte) ([]byte, error) {
	return cbor.Marshal([]any{contextCountersign, []byte{}, []byte{}, bstr(externalAAD), bstr(ciphertext)})
}
