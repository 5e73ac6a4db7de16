package store

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// envelopeVersion is the newest sealed key format this package writes.
const envelopeVersion = 1

// ErrWrongPassphrase is returned when the passphrase is wrong or the sealed
// file was modified.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted key file")

// envelope is the on-disk form of a passphrase-sealed secret.
type envelope struct {
	V      int    `cbor:"1,keyasint"`
	Salt   []byte `cbor:"2,keyasint"`
	N      int    `cbor:"3,keyasint"`
	R      int    `cbor:"4,keyasint"`
	P      int    `cbor:"5,keyasint"`
	Cipher []byte `cbor:"6,keyasint"`
}

// scryptParams are the cost parameters for newly sealed files.
var scryptParams = struct{ N, R, P int }{N: 1 << 15, R: 8, P: 1}

func envelopeKey(passphrase string, salt []byte, n, r, p int) ([]byte, error) {
	return scrypt.Key([]byte(passphrase), salt, n, r, p, chacha20poly1305.KeySize)
}

// seal derives a key from passphrase and encrypts raw. The salt doubles as
// associated data; a fresh salt per file keeps the zero nonce unique.
func seal(passphrase string, raw []byte) ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	env := envelope{V: envelopeVersion, Salt: salt, N: scryptParams.N, R: scryptParams.R, P: scryptParams.P}
	key, err := envelopeKey(passphrase, salt, env.N, env.R, env.P)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	env.Cipher = aead.Seal(nil, nonce[:], raw, salt)
	return cbor.Marshal(env)
}

// unseal reverses seal.
func unseal(passphrase string, b []byte) ([]byte, error) {
	var env envelope
	if err := cbor.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("store: decode key file: %w", err)
	}
	if env.V < 1 || env.V > envelopeVersion {
		return nil, fmt.Errorf("store: unsupported key file version %d", env.V)
	}

	key, err := envelopeKey(passphrase, env.Salt, env.N, env.R, env.P)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], env.Cipher, env.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}
