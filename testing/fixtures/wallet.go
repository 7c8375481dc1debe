package fixtures

import (
	"context"
	"fmt"

	"github.com/gaiax/go-gxcert/principal"
	"github.com/gaiax/go-gxcert/principal/address"
	"github.com/gaiax/go-gxcert/principal/ambient"
)

// Wallet returns a wallet that signs with the given signers, keyed by their
// addresses.
func Wallet(signers ...principal.Signer) ambient.Wallet {
	keys := map[address.Address]principal.Signer{}
	for _, s := range signers {
		keys[s.Address()] = s
	}
	return ambient.WalletFunc(func(ctx context.Context, addr address.Address, msg []byte) ([]byte, error) {
		s, ok := keys[addr]
		if !ok {
			return nil, fmt.Errorf("unknown account: %s", addr)
		}
		sig, err := s.Sign(ctx, msg)
		if err != nil {
			return nil, err
		}
		return sig.Raw(), nil
	})
}

// BlockingWallet never answers, as a user who ignores the prompt.
var BlockingWallet = ambient.WalletFunc(func(ctx context.Context, addr address.Address, msg []byte) ([]byte, error) {
	select {}
})
