package preimage

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/gaiax/go-gxcert/core/failure"
	"github.com/gaiax/go-gxcert/core/nonce"
	"github.com/gaiax/go-gxcert/core/typed"
	"github.com/gaiax/go-gxcert/principal/address"
	"github.com/stretchr/testify/require"
)

var (
	one    = nonce.MustParse("0x01")
	member = address.Address{0xaa, 0xbb}
)

func TestCertificate(t *testing.T) {
	packed := typed.Pack(Certificate("t", "d", "i", one)...)
	expected := append([]byte("tdi"), one[:]...)
	require.Equal(t, expected, packed)
}

func TestMembership(t *testing.T) {
	invite := typed.Pack(Invite(member, one)...)
	disable := typed.Pack(Disable(member, one)...)

	t.Run("tagged", func(t *testing.T) {
		require.True(t, bytes.HasPrefix(invite, []byte(TagInvite)))
		require.True(t, bytes.HasPrefix(disable, []byte(TagDisable)))
		require.Len(t, invite, len(TagInvite)+address.Size+32)
	})

	t.Run("actions never share a preimage", func(t *testing.T) {
		require.NotEqual(t, invite, disable)
	})
}

func TestProfile(t *testing.T) {
	create := typed.Pack(Profile("alice", "icon", one)...)
	update := typed.Pack(ProfileUpdate("alice", "icon", one)...)
	require.NotEqual(t, create, update)
	require.Equal(t, append([]byte(TagUpdate), create...), update)
}

func TestGroupUpdate(t *testing.T) {
	t.Run("packs the id", func(t *testing.T) {
		values, err := GroupUpdate(big.NewInt(7), "g", "r", "p", one)
		require.NoError(t, err)
		require.Len(t, values, 6)
		require.Equal(t, typed.KindUint256, values[1].Kind())
		require.Equal(t, byte(7), values[1].Packed()[31])
	})

	t.Run("negative id", func(t *testing.T) {
		_, err := GroupUpdate(big.NewInt(-1), "g", "r", "p", one)
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
	})
}

func TestUserCertificates(t *testing.T) {
	issuer := address.Address{0x01}

	t.Run("recipients in order", func(t *testing.T) {
		a, b := address.Address{0x0a}, address.Address{0x0b}
		values, err := UserCertificates(big.NewInt(1), issuer, []address.Address{a, b}, one)
		require.NoError(t, err)
		require.Len(t, values, 5)
		require.True(t, values[2].Equal(typed.Address(a)))
		require.True(t, values[3].Equal(typed.Address(b)))

		swapped, err := UserCertificates(big.NewInt(1), issuer, []address.Address{b, a}, one)
		require.NoError(t, err)
		require.NotEqual(t, typed.Pack(values...), typed.Pack(swapped...))
	})

	t.Run("no recipients", func(t *testing.T) {
		_, err := UserCertificates(big.NewInt(1), issuer, nil, one)
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := UserCertificates(nil, issuer, []address.Address{member}, one)
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
	})
}

func TestInvalidation(t *testing.T) {
	values, err := Invalidation(big.NewInt(3), one)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(typed.Pack(values...), []byte(TagInvalidate)))

	single, err := UserCertificate(member, big.NewInt(3), one)
	require.NoError(t, err)
	require.NotEqual(t, typed.Pack(values...), typed.Pack(single...))
}
