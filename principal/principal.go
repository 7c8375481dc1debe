package principal

import (
	"context"

	"github.com/gaiax/go-gxcert/crypto/signature"
	"github.com/gaiax/go-gxcert/principal/address"
)

type Principal interface {
	Address() address.Address
}

type Signer interface {
	Principal
	// Sign produces a recoverable signature over the EIP-191 personal message
	// hash of digest. It may block when the key is held elsewhere.
	Sign(ctx context.Context, digest []byte) (signature.Signature, error)
}

type Verifier interface {
	Principal
	// Verify that sig was produced over digest by this principal.
	Verify(digest []byte, sig signature.Signature) bool
}
