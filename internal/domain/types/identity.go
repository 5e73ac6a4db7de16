package types

// Identity is the local countersignature key pair as stored on disk.
//
// Key holds the CBOR encoded COSE_Key including the private parameter.
type Identity struct {
	Algorithm int    `json:"alg"`
	Key       []byte `json:"cose_key"`
}
