package crypto_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"groscore/internal/cose"
	"groscore/internal/crypto"
)

// COSE keys generated by an independent COSE implementation.
const (
	edPrivate = "pQMnAQEgBiFYIAaekSuDljrMWUG2NUaGfewQbluQUfLuFPO8XMlhrNQ6I1ggZHFNQaJAth2NgjUCcXqwiMn0r2/JhEVT5K1MQsxzUjk="
	edPublic  = "pAMnAQEgBiFYIHfsNYwdNE5B7g6HuDg9I6IJms05vfmJzkW1Loh0Yzib"
	ecPrivate = "pgECI1gg2qPzgLjNqAaJWnjh9trtVjX2Gp2mbzyAQLSJt9LD2j8iWCDe8qCLkQ59ZOIwmFVk2oGtfoz4epMe/Fg2nvKQwkQ+XiFYIKb0PXRXX/6hU45EpcXUAQPufU03fkYA+W6gPoiZ+d0YIAEDJg=="
)

func mustPrivate(t *testing.T, s string) *crypto.PrivateKey {
	t.Helper()
	k, err := cose.ParseKey(s)
	require.NoError(t, err)
	priv, err := crypto.PrivateKeyFromCOSE(k)
	require.NoError(t, err)
	return priv
}

func TestKeys_FromCOSE(t *testing.T) {
	ed := mustPrivate(t, edPrivate)
	require.Equal(t, cose.AlgEdDSA, ed.Algorithm())

	ec := mustPrivate(t, ecPrivate)
	require.Equal(t, cose.AlgES256, ec.Algorithm())
	kty, crv := ec.Public().Params()
	require.Equal(t, cose.KeyTypeEC2, kty)
	require.Equal(t, cose.CurveP256, crv)

	k, err := cose.ParseKey(edPublic)
	require.NoError(t, err)
	pub, err := crypto.PublicKeyFromCOSE(k)
	require.NoError(t, err)
	require.Equal(t, cose.AlgEdDSA, pub.Algorithm())
	require.Len(t, pub.Fingerprint(), 20)

	_, err = crypto.PrivateKeyFromCOSE(k)
	require.Error(t, err, "a public COSE_Key cannot sign")
}

func TestKeys_MismatchedCoordinatesRejected(t *testing.T) {
	k, err := cose.ParseKey(edPrivate)
	require.NoError(t, err)
	k.X[0] ^= 0xff
	_, err = crypto.PrivateKeyFromCOSE(k)
	require.ErrorIs(t, err, crypto.ErrKeyMismatch)
}

func TestKeys_SignVerify(t *testing.T) {
	for _, alg := range []cose.Algorithm{cose.AlgEdDSA, cose.AlgES256} {
		t.Run(alg.String(), func(t *testing.T) {
			k, err := crypto.GenerateKey(alg)
			require.NoError(t, err)

			msg := []byte("countersigned")
			sig, err := k.Sign(msg)
			require.NoError(t, err)
			require.Len(t, sig, alg.SignatureSize())
			require.True(t, k.Public().Verify(msg, sig))

			sig[0] ^= 1
			require.False(t, k.Public().Verify(msg, sig))
			require.False(t, k.Public().Verify(msg, sig[:10]))

			// The exported COSE_Key round-trips to the same key.
			again, err := crypto.PrivateKeyFromCOSE(k.COSE())
			require.NoError(t, err)
			require.True(t, again.Public().Equal(k.Public()))
		})
	}
}

func TestSharedSecret_Symmetric(t *testing.T) {
	for _, alg := range []cose.Algorithm{cose.AlgEdDSA, cose.AlgES256} {
		t.Run(alg.String(), func(t *testing.T) {
			a, err := crypto.GenerateKey(alg)
			require.NoError(t, err)
			b, err := crypto.GenerateKey(alg)
			require.NoError(t, err)

			ab, err := crypto.SharedSecret(a, b.Public())
			require.NoError(t, err)
			ba, err := crypto.SharedSecret(b, a.Public())
			require.NoError(t, err)
			require.Equal(t, ab, ba)
			require.Len(t, ab, 32)
		})
	}

	ed := mustPrivate(t, edPrivate)
	ec := mustPrivate(t, ecPrivate)
	_, err := crypto.SharedSecret(ed, ec.Public())
	require.Error(t, err)
}

func TestAEAD_RoundTrip(t *testing.T) {
	algs := []cose.Algorithm{
		cose.AlgAESCCM16_64_128, cose.AlgAESCCM16_64_256, cose.AlgAESCCM16_128_128,
		cose.AlgA128GCM, cose.AlgA256GCM, cose.AlgChaCha20Poly1305,
	}
	for _, alg := range algs {
		t.Run(alg.String(), func(t *testing.T) {
			p, _ := alg.AEAD()
			key := bytes.Repeat([]byte{0x11}, p.KeySize)
			nonce := bytes.Repeat([]byte{0x22}, p.NonceSize)

			aead, err := crypto.NewAEAD(alg, key)
			require.NoError(t, err)
			require.Equal(t, p.TagSize, aead.Overhead())

			ct := aead.Seal(nil, nonce, []byte("payload"), []byte("aad"))
			pt, err := aead.Open(nil, nonce, ct, []byte("aad"))
			require.NoError(t, err)
			require.Equal(t, "payload", string(pt))

			_, err = aead.Open(nil, nonce, ct, []byte("other"))
			require.Error(t, err)
		})
	}

	_, err := crypto.NewAEAD(cose.AlgAESCCM16_64_128, make([]byte, 5))
	require.Error(t, err)
	_, err = crypto.NewAEAD(cose.AlgEdDSA, make([]byte, 16))
	require.ErrorIs(t, err, cose.ErrUnsupportedAlgorithm)
}

func TestDecodeBytes(t *testing.T) {
	b, err := crypto.DecodeBytes("0x9e7ca92223786340")
	require.NoError(t, err)
	require.Equal(t, []byte{0x9e, 0x7c, 0xa9, 0x22, 0x23, 0x78, 0x63, 0x40}, b)

	b, err = crypto.DecodeBytes("b64:dGVzdHRlc3Q=")
	require.NoError(t, err)
	require.Equal(t, "testtest", string(b))

	b, err = crypto.DecodeBytes("")
	require.NoError(t, err)
	require.NotNil(t, b)
	require.Empty(t, b)

	_, err = crypto.DecodeBytes("zz")
	require.Error(t, err)
}
