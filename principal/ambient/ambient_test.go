package ambient_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gaiax/go-gxcert/core/hash/keccak256"
	"github.com/gaiax/go-gxcert/principal/address"
	"github.com/gaiax/go-gxcert/principal/ambient"
	"github.com/gaiax/go-gxcert/principal/secp256k1/verifier"
	"github.com/gaiax/go-gxcert/testing/fixtures"
	"github.com/stretchr/testify/require"
)

func TestAmbient(t *testing.T) {
	digest := keccak256.Sum([]byte("hello"))

	t.Run("it signs through the wallet", func(t *testing.T) {
		s := ambient.From(fixtures.Alice.Address(), fixtures.Wallet(fixtures.Alice))
		require.Equal(t, fixtures.Alice.Address(), s.Address())

		sig, err := s.Sign(t.Context(), digest)
		require.NoError(t, err)

		signer, err := verifier.Recover(digest, sig)
		require.NoError(t, err)
		require.Equal(t, fixtures.Alice.Address(), signer)

		expected, err := fixtures.Alice.Sign(t.Context(), digest)
		require.NoError(t, err)
		require.Equal(t, expected.Bytes(), sig.Bytes())
	})

	t.Run("address is used as-is", func(t *testing.T) {
		s := ambient.From(fixtures.Bob.Address(), fixtures.Wallet(fixtures.Alice))
		require.Equal(t, fixtures.Bob.Address(), s.Address())
		_, err := s.Sign(t.Context(), digest)
		require.Error(t, err)
	})

	t.Run("wallet rejection", func(t *testing.T) {
		rejected := errors.New("user rejected the request")
		w := ambient.WalletFunc(func(ctx context.Context, addr address.Address, msg []byte) ([]byte, error) {
			return nil, rejected
		})
		_, err := ambient.From(fixtures.Alice.Address(), w).Sign(t.Context(), digest)
		require.ErrorIs(t, err, rejected)
	})

	t.Run("malformed wallet signature", func(t *testing.T) {
		w := ambient.WalletFunc(func(ctx context.Context, addr address.Address, msg []byte) ([]byte, error) {
			return []byte{1, 2, 3}, nil
		})
		_, err := ambient.From(fixtures.Alice.Address(), w).Sign(t.Context(), digest)
		require.Error(t, err)
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()
		_, err := ambient.From(fixtures.Alice.Address(), fixtures.BlockingWallet).Sign(ctx, digest)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
