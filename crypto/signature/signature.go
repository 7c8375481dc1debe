package signature

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/multiformats/go-varint"
)

// ES256K is the code for a recoverable secp256k1 signature in the 65 byte
// Ethereum layout r || s || v.
const ES256K = 0xd0e7

// RecoverableSize is the raw size of an ES256K signature.
const RecoverableSize = 65

type Signature interface {
	Code() uint64
	Size() uint64
	Bytes() []byte
	// Raw signature (without signature algorithm info).
	Raw() []byte
	// Hex is the raw signature as 0x prefixed hex.
	Hex() string
}

func NewSignature(code uint64, raw []byte) Signature {
	cl := varint.UvarintSize(code)
	rl := varint.UvarintSize(uint64(len(raw)))
	sig := make(signature, cl+rl+len(raw))
	varint.PutUvarint(sig, code)
	varint.PutUvarint(sig[cl:], uint64(len(raw)))
	copy(sig[cl+rl:], raw)
	return sig
}

// NewRecoverable wraps a 65 byte r || s || v signature, normalising v to
// 27 or 28.
func NewRecoverable(raw []byte) (Signature, error) {
	if len(raw) != RecoverableSize {
		return nil, fmt.Errorf("invalid recoverable signature length: %d wanted: %d", len(raw), RecoverableSize)
	}
	r := make([]byte, RecoverableSize)
	copy(r, raw)
	switch r[64] {
	case 0, 1:
		r[64] += 27
	case 27, 28:
	default:
		return nil, fmt.Errorf("invalid recovery id: %d", r[64])
	}
	return NewSignature(ES256K, r), nil
}

// Parse reads a 0x prefixed hex recoverable signature.
func Parse(str string) (Signature, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(str, "0x"))
	if err != nil {
		return nil, fmt.Errorf("decoding signature hex: %w", err)
	}
	return NewRecoverable(b)
}

func Encode(s Signature) []byte {
	return s.Bytes()
}

func Decode(b []byte) (Signature, error) {
	code, err := varint.ReadUvarint(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("reading signature code: %w", err)
	}
	cl := varint.UvarintSize(code)
	size, err := varint.ReadUvarint(bytes.NewReader(b[cl:]))
	if err != nil {
		return nil, fmt.Errorf("reading signature size: %w", err)
	}
	if uint64(len(b)-cl-varint.UvarintSize(size)) != size {
		return nil, fmt.Errorf("signature size mismatch: header says %d", size)
	}
	return signature(b), nil
}

type signature []byte

func (s signature) Code() uint64 {
	c, _ := varint.ReadUvarint(bytes.NewReader(s))
	return c
}

func (s signature) Size() uint64 {
	n, _ := varint.ReadUvarint(bytes.NewReader(s[varint.UvarintSize(s.Code()):]))
	return n
}

func (s signature) Raw() []byte {
	cl := varint.UvarintSize(s.Code())
	rl := varint.UvarintSize(s.Size())
	return s[cl+rl:]
}

func (s signature) Bytes() []byte {
	return s
}

func (s signature) Hex() string {
	return "0x" + hex.EncodeToString(s.Raw())
}

func (s signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Hex())
}
