package client

import (
	"bytes"

	"github.com/gaiax/go-gxcert/core/failure"
	"github.com/gaiax/go-gxcert/core/nonce"
	"github.com/gaiax/go-gxcert/core/preimage"
	"github.com/gaiax/go-gxcert/core/typed"
	"github.com/gaiax/go-gxcert/envelope"
	"github.com/gaiax/go-gxcert/record"
)

// VerifyEnvelope checks an envelope the way the contract would: the digest
// is recomputed from the payload and nonce, then the signature must recover
// to the claimed signer.
func VerifyEnvelope[P any](c *Client, e *envelope.Envelope[P]) error {
	if e.Version != preimage.Version {
		return failure.InvalidRecord("unsupported envelope version %q", e.Version)
	}
	values, err := preimageOf(e.Action, any(e.Payload), e.Nonce)
	if err != nil {
		return err
	}
	digest, err := c.Digest(values)
	if err != nil {
		return err
	}
	if !bytes.Equal(digest.Digest(), e.Hash.Digest()) {
		return failure.InvalidRecord("hash %s does not match payload digest %s", e.Hash.Hex(), digest.Hex())
	}
	return envelope.Verify(e)
}

func preimageOf(action preimage.Action, payload any, n nonce.Nonce) ([]typed.Value, error) {
	switch p := payload.(type) {
	case record.Certificate:
		if action == preimage.SignCertificate {
			return preimage.Certificate(p.Title, p.Description, p.Image, n), nil
		}
	case StoredCertificate:
		return preimageOf(action, p.Certificate, n)
	case record.Profile:
		switch action {
		case preimage.CreateProfile:
			return preimage.Profile(p.Name, p.Icon, n), nil
		case preimage.UpdateProfile:
			return preimage.ProfileUpdate(p.Name, p.Icon, n), nil
		}
	case record.MembershipAction:
		switch {
		case action == preimage.InviteMember && p.Kind == record.Invite:
			return preimage.Invite(p.Address, n), nil
		case action == preimage.DisableMember && p.Kind == record.Disable:
			return preimage.Disable(p.Address, n), nil
		}
	case record.Group:
		switch action {
		case preimage.CreateGroup:
			return preimage.Group(p.Name, p.Residence, p.Phone, n), nil
		case preimage.UpdateGroup:
			return preimage.GroupUpdate(p.ID, p.Name, p.Residence, p.Phone, n)
		}
	case record.UserCertificate:
		if action == preimage.IssueUserCertificate {
			return preimage.UserCertificate(p.To, p.CertID, n)
		}
	case UserCertificates:
		if action == preimage.IssueUserCertBatch {
			return preimage.UserCertificates(p.CertID, p.From, p.Recipients, n)
		}
	case Invalidation:
		if action == preimage.InvalidateUserCert {
			return preimage.Invalidation(p.UserCertID, n)
		}
	}
	return nil, failure.InvalidRecord("action %s does not take a %T payload", action, payload)
}
