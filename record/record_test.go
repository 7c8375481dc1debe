package record

import (
	"math/big"
	"testing"

	"github.com/gaiax/go-gxcert/core/failure"
	"github.com/gaiax/go-gxcert/principal/address"
	"github.com/stretchr/testify/require"
)

const (
	alice = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	bob   = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
)

func TestAssembleUserCertificate(t *testing.T) {
	t.Run("normalises addresses", func(t *testing.T) {
		uc, err := AssembleUserCertificate(big.NewInt(3), alice, bob)
		require.NoError(t, err)
		require.Equal(t, "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", uc.From.String())
		require.Equal(t, bob, uc.To.String())
		require.False(t, uc.Invalidated)
	})

	t.Run("invalid recipient", func(t *testing.T) {
		_, err := AssembleUserCertificate(big.NewInt(3), alice, "0x12")
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
	})

	t.Run("missing cert id", func(t *testing.T) {
		_, err := AssembleUserCertificate(nil, alice, bob)
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
	})
}

func TestAssembleProfile(t *testing.T) {
	p, err := AssembleProfile("alice", "", "icon")
	require.NoError(t, err)
	require.Equal(t, "alice", p.Name)

	_, err = AssembleProfile("  ", "", "icon")
	require.ErrorIs(t, err, failure.ErrInvalidRecord)
}

func TestAssembleGroup(t *testing.T) {
	a, err := AssembleMember("alice", alice, "")
	require.NoError(t, err)
	b, err := AssembleMember("bob", bob, "")
	require.NoError(t, err)

	t.Run("keeps member order", func(t *testing.T) {
		g, err := AssembleGroup("lab", "tokyo", "", []Member{b, a})
		require.NoError(t, err)
		require.Nil(t, g.ID)
		require.Equal(t, []Member{b, a}, g.Members)
	})

	t.Run("no members", func(t *testing.T) {
		g, err := AssembleGroup("lab", "", "", nil)
		require.NoError(t, err)
		require.NotNil(t, g.Members)
		require.Empty(t, g.Members)
	})

	t.Run("duplicate member", func(t *testing.T) {
		_, err := AssembleGroup("lab", "", "", []Member{a, b, a})
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
	})

	t.Run("with id", func(t *testing.T) {
		g, err := AssembleGroup("lab", "", "", nil)
		require.NoError(t, err)
		withID, err := g.WithID(big.NewInt(9))
		require.NoError(t, err)
		require.Equal(t, int64(9), withID.ID.Int64())
		require.Nil(t, g.ID)

		_, err = g.WithID(nil)
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
	})
}

func TestAssembleMembershipAction(t *testing.T) {
	m, err := AssembleMembershipAction(Invite, big.NewInt(1), bob)
	require.NoError(t, err)
	require.Equal(t, Invite, m.Kind)
	require.Equal(t, mustParse(t, bob), m.Address)

	_, err = AssembleMembershipAction("kick", big.NewInt(1), bob)
	require.ErrorIs(t, err, failure.ErrInvalidRecord)

	_, err = AssembleMembershipAction(Disable, big.NewInt(1), "bob")
	require.ErrorIs(t, err, failure.ErrInvalidRecord)
}

func mustParse(t *testing.T, s string) address.Address {
	a, err := address.Parse(s)
	require.NoError(t, err)
	return a
}

func TestValidateZeroValues(t *testing.T) {
	require.ErrorIs(t, Profile{}.Validate(), failure.ErrInvalidRecord)
	require.ErrorIs(t, Group{}.Validate(), failure.ErrInvalidRecord)
	require.ErrorIs(t, UserCertificate{}.Validate(), failure.ErrInvalidRecord)
	require.ErrorIs(t, MembershipAction{}.Validate(), failure.ErrInvalidRecord)
}

func TestGroupValidate(t *testing.T) {
	a, err := AssembleMember("alice", alice, "")
	require.NoError(t, err)

	t.Run("duplicate member", func(t *testing.T) {
		g := Group{Name: "lab", Members: []Member{a, a}}
		require.ErrorIs(t, g.Validate(), failure.ErrInvalidRecord)
	})

	t.Run("negative id", func(t *testing.T) {
		g := Group{ID: big.NewInt(-1), Name: "lab"}
		require.ErrorIs(t, g.Validate(), failure.ErrInvalidRecord)
	})

	t.Run("valid", func(t *testing.T) {
		g := Group{ID: big.NewInt(2), Name: "lab", Members: []Member{a}}
		require.NoError(t, g.Validate())
	})
}

func TestUserCertificateValidate(t *testing.T) {
	uc := UserCertificate{CertID: big.NewInt(1), To: mustParse(t, bob)}
	require.NoError(t, uc.Validate())

	uc.CertID = big.NewInt(-1)
	require.ErrorIs(t, uc.Validate(), failure.ErrInvalidRecord)
}
