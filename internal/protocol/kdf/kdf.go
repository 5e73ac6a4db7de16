package kdf

import (
	"groscore/internal/cose"
	"groscore/internal/crypto"
	"groscore/internal/util/memzero"
)

const (
	labelKey = "Key"
	labelIV  = "IV"
)

// Params are the inputs shared by every derivation in one group.
type Params struct {
	MasterSecret []byte
	MasterSalt   []byte
	IDContext    []byte
	AEAD         cose.Algorithm
	KDF          cose.Algorithm
}

// Key derives the group key owned by id, used as sender key by id and as
// recipient key by everyone else.
func Key(p Params, id []byte) ([]byte, error) {
	aead, _ := p.AEAD.AEAD()
	return derive(p, p.MasterSalt, p.MasterSecret, id, labelKey, aead.KeySize)
}

// CommonIV derives the IV shared by all members.
func CommonIV(p Params) ([]byte, error) {
	aead, _ := p.AEAD.AEAD()
	return derive(p, p.MasterSalt, p.MasterSecret, []byte{}, labelIV, aead.NonceSize)
}

// Pairwise derives the pairwise key owned by ownerID toward one counterparty.
//
// groupKey is the owner's group key, shared the ECDH secret between the two
// countersignature keys, and ownerPub/peerPub the raw public keys in the
// owner-first order.
func Pairwise(p Params, ownerID, groupKey, shared, ownerPub, peerPub []byte) ([]byte, error) {
	aead, _ := p.AEAD.AEAD()
	ikm := make([]byte, 0, len(ownerPub)+len(peerPub)+len(shared))
	ikm = append(append(append(ikm, ownerPub...), peerPub...), shared...)
	defer memzero.Zero(ikm)
	return derive(p, groupKey, ikm, ownerID, labelKey, aead.KeySize)
}

func derive(p Params, salt, ikm, id []byte, label string, length int) ([]byte, error) {
	info, err := cose.Info(id, p.IDContext, p.AEAD, label, length)
	if err != nil {
		return nil, err
	}
	return crypto.HKDF(p.KDF, salt, ikm, info, length)
}
