package ambient

import (
	"context"
	"fmt"

	"github.com/gaiax/go-gxcert/crypto/signature"
	"github.com/gaiax/go-gxcert/principal"
	"github.com/gaiax/go-gxcert/principal/address"
)

// Wallet holds keys outside this process, e.g. a browser extension or a
// hardware device reached through an RPC bridge.
type Wallet interface {
	// PersonalSign asks the holder of addr to sign msg with the EIP-191
	// personal message scheme and returns the 65 byte r || s || v
	// signature. It may block until a user approves or rejects the request.
	PersonalSign(ctx context.Context, addr address.Address, msg []byte) ([]byte, error)
}

// WalletFunc adapts a function to the [Wallet] interface.
type WalletFunc func(ctx context.Context, addr address.Address, msg []byte) ([]byte, error)

func (f WalletFunc) PersonalSign(ctx context.Context, addr address.Address, msg []byte) ([]byte, error) {
	return f(ctx, addr, msg)
}

type ambient struct {
	addr   address.Address
	wallet Wallet
}

func (a ambient) Address() address.Address {
	return a.addr
}

// Sign delegates to the wallet. The wallet call runs on its own goroutine
// so that a cancelled context releases the caller even if the wallet never
// answers.
func (a ambient) Sign(ctx context.Context, digest []byte) (signature.Signature, error) {
	type result struct {
		raw []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		raw, err := a.wallet.PersonalSign(ctx, a.addr, digest)
		done <- result{raw, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for wallet signature from %s: %w", a.addr, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("wallet signature from %s: %w", a.addr, res.err)
		}
		return signature.NewRecoverable(res.raw)
	}
}

// From creates a signer for a key held by the wallet under addr. The address
// is trusted as-is; the resulting signature is the proof.
func From(addr address.Address, wallet Wallet) principal.Signer {
	return ambient{addr, wallet}
}
