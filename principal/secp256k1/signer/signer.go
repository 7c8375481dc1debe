package signer

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/gaiax/go-gxcert/core/hash/keccak256"
	"github.com/gaiax/go-gxcert/crypto/signature"
	"github.com/gaiax/go-gxcert/principal"
	"github.com/gaiax/go-gxcert/principal/address"
	"github.com/gaiax/go-gxcert/principal/multiformat"
	"github.com/gaiax/go-gxcert/principal/secp256k1/verifier"
	"github.com/multiformats/go-multibase"
)

// secp256k1-priv
const Code = 0x1301
const Name = verifier.Name

const SignatureCode = verifier.SignatureCode
const SignatureAlgorithm = verifier.SignatureAlgorithm

const KeySize = 32

type Secp256k1Signer struct {
	key  *secp256k1.PrivateKey
	addr address.Address
}

var _ principal.Signer = (*Secp256k1Signer)(nil)

func Generate() (*Secp256k1Signer, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generating secp256k1 key: %w", err)
	}
	return fromKey(key)
}

// Parse reads a private key given either as 0x prefixed hex of the raw 32
// bytes, or as a multibase string of the multicodec tagged key produced by
// [Format].
func Parse(str string) (*Secp256k1Signer, error) {
	if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
		b, err := hex.DecodeString(str[2:])
		if err != nil {
			return nil, fmt.Errorf("decoding private key hex: %w", err)
		}
		return FromRaw(b)
	}
	_, b, err := multibase.Decode(str)
	if err != nil {
		return nil, fmt.Errorf("decoding multibase string: %w", err)
	}
	return Decode(b)
}

// Format encodes the signer as a base64pad multibase string.
func Format(s *Secp256k1Signer) (string, error) {
	return multibase.Encode(multibase.Base64pad, s.Encode())
}

// Decode reads a multicodec tagged private key.
func Decode(b []byte) (*Secp256k1Signer, error) {
	raw, err := multiformat.Untag(Code, b, KeySize)
	if err != nil {
		return nil, err
	}
	return FromRaw(raw)
}

// FromRaw builds a signer from the raw 32 byte private scalar.
func FromRaw(b []byte) (*Secp256k1Signer, error) {
	if len(b) != KeySize {
		return nil, fmt.Errorf("invalid length: %d wanted: %d", len(b), KeySize)
	}
	key := secp256k1.PrivKeyFromBytes(b)
	if key.Key.IsZero() {
		return nil, fmt.Errorf("invalid private key: zero scalar")
	}
	return fromKey(key)
}

func fromKey(key *secp256k1.PrivateKey) (*Secp256k1Signer, error) {
	addr, err := address.FromPublicKey(key.PubKey().SerializeUncompressed())
	if err != nil {
		return nil, fmt.Errorf("deriving address: %w", err)
	}
	return &Secp256k1Signer{key, addr}, nil
}

func (s *Secp256k1Signer) Code() uint64 {
	return Code
}

func (s *Secp256k1Signer) SignatureCode() uint64 {
	return SignatureCode
}

func (s *Secp256k1Signer) SignatureAlgorithm() string {
	return SignatureAlgorithm
}

func (s *Secp256k1Signer) Address() address.Address {
	return s.addr
}

func (s *Secp256k1Signer) Verifier() principal.Verifier {
	return verifier.For(s.addr)
}

// Encode returns the multicodec tagged private key.
func (s *Secp256k1Signer) Encode() []byte {
	return multiformat.Tag(Code, s.Raw())
}

// Raw returns the 32 byte private scalar.
func (s *Secp256k1Signer) Raw() []byte {
	return s.key.Serialize()
}

// Sign signs the personal message hash of digest. Signatures are
// deterministic (RFC 6979), so the same key and digest always yield the
// same bytes.
func (s *Secp256k1Signer) Sign(ctx context.Context, digest []byte) (signature.Signature, error) {
	compact := ecdsa.SignCompact(s.key, keccak256.HashMessage(digest), false)
	// v || r || s  ->  r || s || v
	raw := make([]byte, signature.RecoverableSize)
	copy(raw, compact[1:])
	raw[64] = compact[0]
	return signature.NewRecoverable(raw)
}
