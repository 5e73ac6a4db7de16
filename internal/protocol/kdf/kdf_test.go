package kdf_test

import (
	"encoding/hex"
	"testing"

	"groscore/internal/cose"
	"groscore/internal/crypto"
	"groscore/internal/protocol/kdf"
)

func rfc8613Params() kdf.Params {
	secret, _ := hex.DecodeString("0102030405060708090a0b0c0d0e0f10")
	salt, _ := hex.DecodeString("9e7ca92223786340")
	return kdf.Params{
		MasterSecret: secret,
		MasterSalt:   salt,
		AEAD:         cose.AlgAESCCM16_64_128,
		KDF:          cose.AlgHKDFSHA256,
	}
}

// RFC 8613 appendix C.1.1, client side.
func TestKey_RFC8613Vectors(t *testing.T) {
	p := rfc8613Params()

	sender, err := kdf.Key(p, []byte{})
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if got := hex.EncodeToString(sender); got != "f0910ed7295e6ad4b54fc793154302ff" {
		t.Fatalf("sender key = %s", got)
	}

	recipient, err := kdf.Key(p, []byte{0x01})
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if got := hex.EncodeToString(recipient); got != "ffb14e093c94c9cac9471648b4f98710" {
		t.Fatalf("recipient key = %s", got)
	}

	iv, err := kdf.CommonIV(p)
	if err != nil {
		t.Fatalf("CommonIV: %v", err)
	}
	if got := hex.EncodeToString(iv); got != "4622d4dd6d944168eefb54987c" {
		t.Fatalf("common IV = %s", got)
	}
}

func TestKey_DependsOnContext(t *testing.T) {
	p := rfc8613Params()
	a, _ := kdf.Key(p, []byte{0x25})
	p.IDContext = []byte("testtest")
	b, _ := kdf.Key(p, []byte{0x25})
	if crypto.Equal(a, b) {
		t.Fatal("ID context must change the derived key")
	}
	again, _ := kdf.Key(p, []byte{0x25})
	if !crypto.Equal(b, again) {
		t.Fatal("derivation must be deterministic")
	}
}

func TestPairwise_Symmetric(t *testing.T) {
	p := rfc8613Params()
	p.IDContext = []byte("testtest")

	for _, alg := range []cose.Algorithm{cose.AlgEdDSA, cose.AlgES256} {
		alice, err := crypto.GenerateKey(alg)
		if err != nil {
			t.Fatalf("GenerateKey: %v", err)
		}
		bob, err := crypto.GenerateKey(alg)
		if err != nil {
			t.Fatalf("GenerateKey: %v", err)
		}
		aliceID, _ := []byte{0x25}, []byte{0x77}
		aliceKey, _ := kdf.Key(p, aliceID)

		ab, _ := crypto.SharedSecret(alice, bob.Public())
		ba, _ := crypto.SharedSecret(bob, alice.Public())

		// Alice's pairwise sender key toward Bob.
		send, err := kdf.Pairwise(p, aliceID, aliceKey, ab, alice.Public().Bytes(), bob.Public().Bytes())
		if err != nil {
			t.Fatalf("Pairwise: %v", err)
		}
		// Bob's pairwise recipient key for Alice.
		recv, err := kdf.Pairwise(p, aliceID, aliceKey, ba, alice.Public().Bytes(), bob.Public().Bytes())
		if err != nil {
			t.Fatalf("Pairwise: %v", err)
		}
		if !crypto.Equal(send, recv) {
			t.Fatalf("%v: pairwise keys differ", alg)
		}
		if crypto.Equal(send, aliceKey) {
			t.Fatalf("%v: pairwise key equals group key", alg)
		}
	}
}
