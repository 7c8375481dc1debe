package client

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/gaiax/go-gxcert/core/failure"
	"github.com/gaiax/go-gxcert/core/hash/keccak256"
	"github.com/gaiax/go-gxcert/core/nonce"
	"github.com/gaiax/go-gxcert/core/preimage"
	"github.com/gaiax/go-gxcert/core/typed"
	"github.com/gaiax/go-gxcert/envelope"
	"github.com/gaiax/go-gxcert/principal/credential"
	"github.com/gaiax/go-gxcert/record"
	"github.com/gaiax/go-gxcert/store"
	"github.com/gaiax/go-gxcert/testing/fixtures"
	"github.com/gaiax/go-gxcert/testing/helpers"
	"github.com/stretchr/testify/require"
)

var (
	aliceKey     = credential.RawKey{Key: fixtures.Alice.Raw()}
	aliceAmbient = credential.AmbientSigner{Address: fixtures.Alice.Address()}
	one          = nonce.MustParse("0x01")
)

func newClient(t *testing.T, options ...Option) *Client {
	c, err := New(options...)
	require.NoError(t, err)
	return c
}

func certificate(t *testing.T) record.Certificate {
	cert, err := record.NewCertificate("Course", "Completed the course", "bafkimage", big.NewInt(7), nil)
	require.NoError(t, err)
	return cert
}

func TestSignCertificate(t *testing.T) {
	c := newClient(t, WithWallet(fixtures.Wallet(fixtures.Alice)))
	cert := certificate(t)

	t.Run("recovers to the signer", func(t *testing.T) {
		env, err := c.SignCertificate(t.Context(), cert, aliceKey, WithNonce(one))
		require.NoError(t, err)
		require.Equal(t, preimage.Version, env.Version)
		require.Equal(t, preimage.SignCertificate, env.Action)
		require.Equal(t, one, env.Nonce)
		require.Equal(t, fixtures.Alice.Address(), env.Signer)
		require.NoError(t, envelope.Verify(env))

		expected := keccak256.Sum(typed.Pack(
			typed.String("Course"),
			typed.String("Completed the course"),
			typed.String("bafkimage"),
			typed.Bytes32(one),
		))
		require.Equal(t, expected, env.Hash.Digest())
	})

	t.Run("deterministic for a supplied nonce", func(t *testing.T) {
		first, err := c.SignCertificate(t.Context(), cert, aliceKey, WithNonce(one))
		require.NoError(t, err)
		second, err := c.SignCertificate(t.Context(), cert, aliceKey, WithNonce(one))
		require.NoError(t, err)
		require.Equal(t, first.Hash.Digest(), second.Hash.Digest())
		require.Equal(t, first.Signature.Bytes(), second.Signature.Bytes())
	})

	t.Run("nonce changes the digest", func(t *testing.T) {
		first, err := c.SignCertificate(t.Context(), cert, aliceKey, WithNonce(one))
		require.NoError(t, err)
		second, err := c.SignCertificate(t.Context(), cert, aliceKey, WithNonce(nonce.MustParse("0x02")))
		require.NoError(t, err)
		require.NotEqual(t, first.Hash.Digest(), second.Hash.Digest())
	})

	t.Run("fresh nonce per call", func(t *testing.T) {
		first, err := c.SignCertificate(t.Context(), cert, aliceKey)
		require.NoError(t, err)
		second, err := c.SignCertificate(t.Context(), cert, aliceKey)
		require.NoError(t, err)
		require.NotEqual(t, first.Nonce, second.Nonce)
		require.NotEqual(t, first.Hash.Digest(), second.Hash.Digest())
	})

	t.Run("ambient signer matches raw key", func(t *testing.T) {
		raw, err := c.SignCertificate(t.Context(), cert, aliceKey, WithNonce(one))
		require.NoError(t, err)
		amb, err := c.SignCertificate(t.Context(), cert, aliceAmbient, WithNonce(one))
		require.NoError(t, err)
		require.Equal(t, raw.Signature.Bytes(), amb.Signature.Bytes())
		require.NoError(t, envelope.Verify(amb))
	})

	t.Run("missing credential", func(t *testing.T) {
		_, err := c.SignCertificate(t.Context(), cert, nil)
		require.ErrorIs(t, err, failure.ErrMissingCredential)
	})

	t.Run("no wallet for ambient signer", func(t *testing.T) {
		_, err := newClient(t).SignCertificate(t.Context(), cert, aliceAmbient)
		require.ErrorIs(t, err, failure.ErrSigningFailed)
	})

	t.Run("wallet never answers", func(t *testing.T) {
		blocking := newClient(t, WithWallet(fixtures.BlockingWallet))
		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()
		_, err := blocking.SignCertificate(ctx, cert, aliceAmbient)
		require.ErrorIs(t, err, failure.ErrSigningFailed)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestSignCertificateObject(t *testing.T) {
	c := newClient(t)

	t.Run("valid object", func(t *testing.T) {
		obj := map[string]any{
			"context":     map[string]any{},
			"title":       "Course",
			"description": "Completed the course",
			"image":       "bafkimage",
			"groupId":     7,
		}
		fromObj, err := c.SignCertificateObject(t.Context(), obj, aliceKey, WithNonce(one))
		require.NoError(t, err)
		fromCert, err := c.SignCertificate(t.Context(), certificate(t), aliceKey, WithNonce(one))
		require.NoError(t, err)
		require.Equal(t, fromCert.Hash.Digest(), fromObj.Hash.Digest())
	})

	t.Run("invalid object", func(t *testing.T) {
		obj := map[string]any{"title": "Course"}
		_, err := c.SignCertificateObject(t.Context(), obj, aliceKey)
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
	})
}

func TestCreateCertificate(t *testing.T) {
	c := newClient(t)
	cert := certificate(t)

	t.Run("stores then signs", func(t *testing.T) {
		env, err := c.CreateCertificate(t.Context(), cert, aliceKey, WithNonce(one))
		require.NoError(t, err)
		require.NoError(t, envelope.Verify(env))

		stored, err := c.GetCertificate(t.Context(), env.Payload.CID)
		require.NoError(t, err)
		require.Equal(t, cert.Title, stored.Title)
		require.Equal(t, 0, cert.GroupID.Cmp(stored.GroupID))
	})

	t.Run("same certificate same identifier", func(t *testing.T) {
		first, err := c.CreateCertificate(t.Context(), cert, aliceKey)
		require.NoError(t, err)
		second, err := c.CreateCertificate(t.Context(), cert, aliceKey)
		require.NoError(t, err)
		require.Equal(t, first.Payload.CID, second.Payload.CID)
	})

	t.Run("nothing stored without a credential", func(t *testing.T) {
		ms := helpers.Must(store.NewMemoryStore())
		_, err := newClient(t, WithStore(ms)).CreateCertificate(t.Context(), cert, nil)
		require.ErrorIs(t, err, failure.ErrMissingCredential)
		require.Equal(t, 0, ms.Len())
	})
}

func TestSignMembership(t *testing.T) {
	c := newClient(t)
	member := fixtures.Bob.Address().String()

	invite, err := c.SignInvite(t.Context(), big.NewInt(1), member, aliceKey, WithNonce(one))
	require.NoError(t, err)
	disable, err := c.SignDisable(t.Context(), big.NewInt(1), member, aliceKey, WithNonce(one))
	require.NoError(t, err)

	require.NotEqual(t, invite.Hash.Digest(), disable.Hash.Digest())
	require.Equal(t, preimage.InviteMember, invite.Action)
	require.Equal(t, preimage.DisableMember, disable.Action)
	require.Equal(t, fixtures.Bob.Address(), invite.Payload.Address)

	t.Run("invalid member", func(t *testing.T) {
		_, err := c.SignInvite(t.Context(), big.NewInt(1), "bob", aliceKey)
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
	})
}

func TestSignProfile(t *testing.T) {
	c := newClient(t)
	p, err := record.AssembleProfile("alice", "alice@example.com", "icon")
	require.NoError(t, err)

	create, err := c.SignProfile(t.Context(), p, aliceKey, WithNonce(one))
	require.NoError(t, err)
	update, err := c.SignProfileUpdate(t.Context(), p, aliceKey, WithNonce(one))
	require.NoError(t, err)
	require.NotEqual(t, create.Hash.Digest(), update.Hash.Digest())
	require.NoError(t, envelope.Verify(update))
}

func TestSignGroup(t *testing.T) {
	c := newClient(t)
	g, err := record.AssembleGroup("lab", "tokyo", "03-0000", nil)
	require.NoError(t, err)

	create, err := c.SignGroup(t.Context(), g, aliceKey, WithNonce(one))
	require.NoError(t, err)
	require.NoError(t, envelope.Verify(create))

	t.Run("update needs an id", func(t *testing.T) {
		_, err := c.SignGroupUpdate(t.Context(), g, aliceKey)
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
	})

	t.Run("update", func(t *testing.T) {
		withID, err := g.WithID(big.NewInt(3))
		require.NoError(t, err)
		update, err := c.SignGroupUpdate(t.Context(), withID, aliceKey, WithNonce(one))
		require.NoError(t, err)
		require.NotEqual(t, create.Hash.Digest(), update.Hash.Digest())
	})
}

func TestSignUserCertificates(t *testing.T) {
	c := newClient(t)
	alice := fixtures.Alice.Address().String()
	bob := fixtures.Bob.Address().String()
	mallory := fixtures.Mallory.Address().String()

	t.Run("single", func(t *testing.T) {
		uc, err := record.AssembleUserCertificate(big.NewInt(7), alice, bob)
		require.NoError(t, err)
		env, err := c.SignUserCertificate(t.Context(), uc, aliceKey, WithNonce(one))
		require.NoError(t, err)
		require.NoError(t, envelope.Verify(env))
	})

	t.Run("batch", func(t *testing.T) {
		env, err := c.SignUserCertificates(t.Context(), big.NewInt(7), alice, []string{bob, mallory}, aliceKey, WithNonce(one))
		require.NoError(t, err)
		require.Len(t, env.Payload.Recipients, 2)
		require.NoError(t, envelope.Verify(env))
	})

	t.Run("empty batch", func(t *testing.T) {
		_, err := c.SignUserCertificates(t.Context(), big.NewInt(7), alice, nil, aliceKey)
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
	})

	t.Run("invalidation", func(t *testing.T) {
		env, err := c.SignInvalidation(t.Context(), big.NewInt(10), aliceKey, WithNonce(one))
		require.NoError(t, err)
		require.Equal(t, int64(10), env.Payload.UserCertID.Int64())
		require.NoError(t, envelope.Verify(env))

		_, err = c.SignInvalidation(t.Context(), nil, aliceKey)
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
	})
}

// Produced independently with go-ethereum: Keccak256 over the packed fields,
// then accounts.TextHash and crypto.Sign with the first hardhat account.
const (
	scenarioDigest    = "0xd13230452df00743cc171d9586f79849e207b34e5e3619f0a54728eae9d7320f"
	scenarioSignature = "0xda2c401944f3a4a20087d0dd112c77ec8c4346a5dce5821b5c3171c722e9da6865d5a6c0d6096fc7b7976e2428d8e5e281cdc6f7d242547c5abed0dba52597551b"
)

func TestSignCertificateVector(t *testing.T) {
	c := newClient(t, WithWallet(fixtures.Wallet(fixtures.Alice)))
	cert, err := record.NewCertificate("title", "description", "image", big.NewInt(7), nil)
	require.NoError(t, err)

	for name, cred := range map[string]credential.Credential{"raw key": aliceKey, "ambient": aliceAmbient} {
		t.Run(name, func(t *testing.T) {
			env, err := c.SignCertificate(t.Context(), cert, cred, WithNonce(one))
			require.NoError(t, err)
			require.Equal(t, scenarioDigest, env.Hash.Hex())
			require.Equal(t, scenarioSignature, env.Signature.Hex())
			require.Equal(t, "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", env.Signer.String())
		})
	}
}

func TestSignInvalidRecord(t *testing.T) {
	ms := helpers.Must(store.NewMemoryStore())
	c := newClient(t, WithStore(ms))

	t.Run("certificate", func(t *testing.T) {
		_, err := c.SignCertificate(t.Context(), record.Certificate{}, aliceKey)
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
	})

	t.Run("certificate without context", func(t *testing.T) {
		cert := record.Certificate{Title: "t", Description: "d", Image: "i", GroupID: big.NewInt(7)}
		_, err := c.CreateCertificate(t.Context(), cert, aliceKey)
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
		_, err = c.UploadCertificate(t.Context(), cert)
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
		require.Equal(t, 0, ms.Len())
	})

	t.Run("profile", func(t *testing.T) {
		_, err := c.SignProfile(t.Context(), record.Profile{}, aliceKey)
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
		_, err = c.SignProfileUpdate(t.Context(), record.Profile{}, aliceKey)
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
	})

	t.Run("group", func(t *testing.T) {
		_, err := c.SignGroup(t.Context(), record.Group{}, aliceKey)
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
		_, err = c.SignGroupUpdate(t.Context(), record.Group{ID: big.NewInt(1)}, aliceKey)
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
	})

	t.Run("user certificate", func(t *testing.T) {
		_, err := c.SignUserCertificate(t.Context(), record.UserCertificate{}, aliceKey)
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
	})

	t.Run("checked before the credential", func(t *testing.T) {
		_, err := c.SignCertificate(t.Context(), record.Certificate{}, nil)
		require.ErrorIs(t, err, failure.ErrInvalidRecord)
	})
}
