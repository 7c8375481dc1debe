package envelope

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gaiax/go-gxcert/core/failure"
	"github.com/gaiax/go-gxcert/core/hash"
	"github.com/gaiax/go-gxcert/core/hash/keccak256"
	"github.com/gaiax/go-gxcert/core/nonce"
	"github.com/gaiax/go-gxcert/core/preimage"
	"github.com/gaiax/go-gxcert/crypto/signature"
	"github.com/gaiax/go-gxcert/principal/address"
	"github.com/gaiax/go-gxcert/principal/secp256k1/verifier"
	"github.com/multiformats/go-multihash"
)

// Envelope is the output of every signing operation. It is handed to the
// backend as-is; nothing here persists it.
type Envelope[P any] struct {
	Version   string
	Action    preimage.Action
	Signature signature.Signature
	Hash      hash.Digest
	Nonce     nonce.Nonce
	Payload   P
	Signer    address.Address
}

// Recover returns the address that produced the signature over the hash.
func (e *Envelope[P]) Recover() (address.Address, error) {
	return verifier.Recover(e.Hash.Digest(), e.Signature)
}

// Verify checks that the signature recovers to the claimed signer.
func Verify[P any](e *Envelope[P]) error {
	signer, err := e.Recover()
	if err != nil {
		return failure.New(failure.SigningFailedName, "recovering signer", err)
	}
	if signer != e.Signer {
		return failure.SigningFailed(fmt.Sprintf("signature was made by %s, not %s", signer, e.Signer), nil)
	}
	return nil
}

type envelopeModel[P any] struct {
	Version   string          `json:"version"`
	Action    preimage.Action `json:"action"`
	Signature string          `json:"signature"`
	Hash      string          `json:"hash"`
	Nonce     nonce.Nonce     `json:"nonce"`
	Payload   P               `json:"payload"`
	Signer    address.Address `json:"address"`
}

func (e *Envelope[P]) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelopeModel[P]{
		Version:   e.Version,
		Action:    e.Action,
		Signature: e.Signature.Hex(),
		Hash:      e.Hash.Hex(),
		Nonce:     e.Nonce,
		Payload:   e.Payload,
		Signer:    e.Signer,
	})
}

// Unmarshal reads an envelope rendered by MarshalJSON. The hash is taken to
// be keccak-256, the only hash of [preimage.Version].
func Unmarshal[P any](b []byte) (*Envelope[P], error) {
	var m envelopeModel[P]
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}
	if m.Version != preimage.Version {
		return nil, fmt.Errorf("unsupported envelope version: %q", m.Version)
	}
	sig, err := signature.Parse(m.Signature)
	if err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(m.Hash, "0x"))
	if err != nil {
		return nil, fmt.Errorf("decoding hash: %w", err)
	}
	if len(raw) != keccak256.Size {
		return nil, fmt.Errorf("invalid hash length: %d", len(raw))
	}
	mh, err := multihash.Encode(raw, keccak256.Code)
	if err != nil {
		return nil, fmt.Errorf("encoding multihash: %w", err)
	}
	return &Envelope[P]{
		Version:   m.Version,
		Action:    m.Action,
		Signature: sig,
		Hash:      hash.NewDigest(keccak256.Code, keccak256.Size, raw, mh),
		Nonce:     m.Nonce,
		Payload:   m.Payload,
		Signer:    m.Signer,
	}, nil
}
