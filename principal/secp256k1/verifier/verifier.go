package verifier

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/gaiax/go-gxcert/core/hash/keccak256"
	"github.com/gaiax/go-gxcert/crypto/signature"
	"github.com/gaiax/go-gxcert/principal"
	"github.com/gaiax/go-gxcert/principal/address"
)

// secp256k1-pub
const Code = 0xe7
const Name = "secp256k1"

const SignatureCode = signature.ES256K
const SignatureAlgorithm = "ES256K"

// Recover returns the address whose key produced sig over the personal
// message hash of digest.
func Recover(digest []byte, sig signature.Signature) (address.Address, error) {
	if sig.Code() != SignatureCode {
		return address.Undef, fmt.Errorf("unsupported signature code: 0x%x", sig.Code())
	}
	raw := sig.Raw()
	if len(raw) != signature.RecoverableSize {
		return address.Undef, fmt.Errorf("invalid signature length: %d", len(raw))
	}
	// r || s || v  ->  v || r || s
	compact := make([]byte, signature.RecoverableSize)
	compact[0] = raw[64]
	copy(compact[1:], raw[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, keccak256.HashMessage(digest))
	if err != nil {
		return address.Undef, fmt.Errorf("recovering public key: %w", err)
	}
	return address.FromPublicKey(pub.SerializeUncompressed())
}

type Secp256k1Verifier address.Address

// For returns a verifier that accepts signatures recovering to addr.
func For(addr address.Address) principal.Verifier {
	return Secp256k1Verifier(addr)
}

func (v Secp256k1Verifier) Address() address.Address {
	return address.Address(v)
}

func (v Secp256k1Verifier) Verify(digest []byte, sig signature.Signature) bool {
	signer, err := Recover(digest, sig)
	if err != nil {
		return false
	}
	return signer == address.Address(v)
}
