// Package preimage maps every signed record action to its fixed field order.
//
// The order is part of the protocol: the verifying contract recomputes the
// digest from the same typed fields in the same order. Changing any order
// here requires a new [Version].
package preimage

import (
	"math/big"

	"github.com/gaiax/go-gxcert/core/failure"
	"github.com/gaiax/go-gxcert/core/nonce"
	"github.com/gaiax/go-gxcert/core/typed"
	"github.com/gaiax/go-gxcert/principal/address"
)

// Version identifies the encoding scheme. It is carried in every envelope.
const Version = "gxcert/packed-keccak256/v1"

// Action tags that prefix the preimage of non-create mutations.
const (
	TagUpdate     = "update:"
	TagInvite     = "invite:"
	TagDisable    = "disable:"
	TagInvalidate = "invalidate:"
)

type Action string

const (
	SignCertificate      Action = "certificate/sign"
	CreateProfile        Action = "profile/create"
	UpdateProfile        Action = "profile/update"
	InviteMember         Action = "member/invite"
	DisableMember        Action = "member/disable"
	CreateGroup          Action = "group/create"
	UpdateGroup          Action = "group/update"
	IssueUserCertificate Action = "user-certificate/issue"
	IssueUserCertBatch   Action = "user-certificate/issue-batch"
	InvalidateUserCert   Action = "user-certificate/invalidate"
)

func Certificate(title, description, image string, n nonce.Nonce) []typed.Value {
	return []typed.Value{
		typed.String(title),
		typed.String(description),
		typed.String(image),
		typed.Bytes32(n),
	}
}

func Profile(name, icon string, n nonce.Nonce) []typed.Value {
	return []typed.Value{
		typed.String(name),
		typed.String(icon),
		typed.Bytes32(n),
	}
}

func ProfileUpdate(name, icon string, n nonce.Nonce) []typed.Value {
	return []typed.Value{
		typed.String(TagUpdate),
		typed.String(name),
		typed.String(icon),
		typed.Bytes32(n),
	}
}

func Invite(member address.Address, n nonce.Nonce) []typed.Value {
	return []typed.Value{
		typed.String(TagInvite),
		typed.Address(member),
		typed.Bytes32(n),
	}
}

func Disable(member address.Address, n nonce.Nonce) []typed.Value {
	return []typed.Value{
		typed.String(TagDisable),
		typed.Address(member),
		typed.Bytes32(n),
	}
}

func Group(name, residence, phone string, n nonce.Nonce) []typed.Value {
	return []typed.Value{
		typed.String(name),
		typed.String(residence),
		typed.String(phone),
		typed.Bytes32(n),
	}
}

func GroupUpdate(groupID *big.Int, name, residence, phone string, n nonce.Nonce) ([]typed.Value, error) {
	id, err := uint256("groupId", groupID)
	if err != nil {
		return nil, err
	}
	return []typed.Value{
		typed.String(TagUpdate),
		id,
		typed.String(name),
		typed.String(residence),
		typed.String(phone),
		typed.Bytes32(n),
	}, nil
}

func UserCertificate(recipient address.Address, certID *big.Int, n nonce.Nonce) ([]typed.Value, error) {
	id, err := uint256("certId", certID)
	if err != nil {
		return nil, err
	}
	return []typed.Value{
		typed.Address(recipient),
		id,
		typed.Bytes32(n),
	}, nil
}

func UserCertificates(certID *big.Int, issuer address.Address, recipients []address.Address, n nonce.Nonce) ([]typed.Value, error) {
	if len(recipients) == 0 {
		return nil, failure.InvalidRecord("batch issuance needs at least one recipient")
	}
	id, err := uint256("certId", certID)
	if err != nil {
		return nil, err
	}
	values := make([]typed.Value, 0, len(recipients)+3)
	values = append(values, id, typed.Address(issuer))
	for _, r := range recipients {
		values = append(values, typed.Address(r))
	}
	return append(values, typed.Bytes32(n)), nil
}

func Invalidation(userCertID *big.Int, n nonce.Nonce) ([]typed.Value, error) {
	id, err := uint256("userCertId", userCertID)
	if err != nil {
		return nil, err
	}
	return []typed.Value{
		typed.String(TagInvalidate),
		id,
		typed.Bytes32(n),
	}, nil
}

func uint256(field string, n *big.Int) (typed.Value, error) {
	v, err := typed.Uint256(n)
	if err != nil {
		return typed.Value{}, failure.InvalidRecord("%s: %s", field, err)
	}
	return v, nil
}
