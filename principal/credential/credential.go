// Package credential resolves the key material a caller hands in to a
// [principal.Signer].
package credential

import (
	"github.com/gaiax/go-gxcert/core/failure"
	"github.com/gaiax/go-gxcert/principal"
	"github.com/gaiax/go-gxcert/principal/address"
	"github.com/gaiax/go-gxcert/principal/ambient"
	"github.com/gaiax/go-gxcert/principal/secp256k1/signer"
)

// Credential is either a [RawKey] or an [AmbientSigner].
type Credential interface {
	isCredential()
}

// RawKey carries a secp256k1 private key in memory.
type RawKey struct {
	Key []byte
}

// AmbientSigner references a key held by a wallet under Address.
type AmbientSigner struct {
	Address address.Address
}

func (RawKey) isCredential()        {}
func (AmbientSigner) isCredential() {}

// From picks the credential the way callers historically passed one: a
// private key wins, otherwise the signer address is used. Both missing is a
// MissingCredential failure.
func From(privateKey []byte, signerAddress string) (Credential, error) {
	if len(privateKey) > 0 {
		return RawKey{Key: privateKey}, nil
	}
	if signerAddress == "" {
		return nil, failure.MissingCredential("neither a private key nor a signer address was supplied")
	}
	addr, err := address.Parse(signerAddress)
	if err != nil {
		return nil, failure.New(failure.MissingCredentialName, "invalid signer address", err)
	}
	return AmbientSigner{Address: addr}, nil
}

// Resolve turns a credential into a signer. The wallet is only consulted for
// AmbientSigner credentials.
func Resolve(cred Credential, wallet ambient.Wallet) (principal.Signer, error) {
	switch c := cred.(type) {
	case RawKey:
		if len(c.Key) == 0 {
			return nil, failure.MissingCredential("raw key credential is empty")
		}
		s, err := signer.FromRaw(c.Key)
		if err != nil {
			return nil, failure.SigningFailed("loading private key", err)
		}
		return s, nil
	case *RawKey:
		if c == nil {
			break
		}
		return Resolve(*c, wallet)
	case AmbientSigner:
		if !c.Address.Defined() {
			return nil, failure.MissingCredential("ambient signer credential has no address")
		}
		if wallet == nil {
			return nil, failure.SigningFailed("no wallet configured for ambient signer "+c.Address.String(), nil)
		}
		return ambient.From(c.Address, wallet), nil
	case *AmbientSigner:
		if c == nil {
			break
		}
		return Resolve(*c, wallet)
	}
	return nil, failure.MissingCredential("no signing credential supplied")
}
