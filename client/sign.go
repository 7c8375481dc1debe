package client

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/gaiax/go-gxcert/core/failure"
	"github.com/gaiax/go-gxcert/core/nonce"
	"github.com/gaiax/go-gxcert/core/preimage"
	"github.com/gaiax/go-gxcert/core/typed"
	"github.com/gaiax/go-gxcert/envelope"
	"github.com/gaiax/go-gxcert/principal/address"
	"github.com/gaiax/go-gxcert/principal/credential"
	"github.com/gaiax/go-gxcert/record"
	"github.com/ipfs/go-cid"
)

// StoredCertificate is a certificate together with the identifier the
// content store assigned to its bytes.
type StoredCertificate struct {
	CID         cid.Cid
	Certificate record.Certificate
}

func (s StoredCertificate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CID         string             `json:"cid"`
		Certificate record.Certificate `json:"certificate"`
	}{s.CID.String(), s.Certificate})
}

func (s *StoredCertificate) UnmarshalJSON(b []byte) error {
	var m struct {
		CID         string             `json:"cid"`
		Certificate record.Certificate `json:"certificate"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	id, err := cid.Decode(m.CID)
	if err != nil {
		return fmt.Errorf("decoding certificate cid: %w", err)
	}
	s.CID = id
	s.Certificate = m.Certificate
	return nil
}

// UserCertificates is the payload of a batch issuance.
type UserCertificates struct {
	CertID     *big.Int          `json:"certId"`
	From       address.Address   `json:"from"`
	Recipients []address.Address `json:"to"`
}

// Invalidation is the payload of a user certificate invalidation.
type Invalidation struct {
	UserCertID *big.Int `json:"userCertId"`
}

// SignCertificate signs (title, description, image, nonce).
func (c *Client) SignCertificate(ctx context.Context, cert record.Certificate, cred credential.Credential, options ...SignOption) (*envelope.Envelope[record.Certificate], error) {
	if err := cert.Validate(); err != nil {
		return nil, err
	}
	return sign(ctx, c, cred, preimage.SignCertificate, cert, func(n nonce.Nonce) ([]typed.Value, error) {
		return preimage.Certificate(cert.Title, cert.Description, cert.Image, n), nil
	}, options)
}

// SignCertificateObject validates an untyped certificate before signing it.
// An invalid object fails with InvalidRecord and nothing is hashed.
func (c *Client) SignCertificateObject(ctx context.Context, obj map[string]any, cred credential.Credential, options ...SignOption) (*envelope.Envelope[record.Certificate], error) {
	cert, err := record.ParseCertificate(obj)
	if err != nil {
		return nil, err
	}
	return c.SignCertificate(ctx, cert, cred, options...)
}

// CreateCertificate stores the certificate in the content store and signs
// it. The envelope payload carries the CID the backend registers on the
// ledger.
func (c *Client) CreateCertificate(ctx context.Context, cert record.Certificate, cred credential.Credential, options ...SignOption) (*envelope.Envelope[StoredCertificate], error) {
	if err := cert.Validate(); err != nil {
		return nil, err
	}
	// fail on the credential before anything is written
	if _, err := credential.Resolve(cred, c.wallet); err != nil {
		return nil, err
	}
	id, err := c.UploadCertificate(ctx, cert)
	if err != nil {
		return nil, err
	}
	payload := StoredCertificate{CID: id, Certificate: cert}
	return sign(ctx, c, cred, preimage.SignCertificate, payload, func(n nonce.Nonce) ([]typed.Value, error) {
		return preimage.Certificate(cert.Title, cert.Description, cert.Image, n), nil
	}, options)
}

// SignProfile signs a new profile: (name, icon, nonce).
func (c *Client) SignProfile(ctx context.Context, p record.Profile, cred credential.Credential, options ...SignOption) (*envelope.Envelope[record.Profile], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return sign(ctx, c, cred, preimage.CreateProfile, p, func(n nonce.Nonce) ([]typed.Value, error) {
		return preimage.Profile(p.Name, p.Icon, n), nil
	}, options)
}

// SignProfileUpdate signs a profile update: ("update:", name, icon, nonce).
func (c *Client) SignProfileUpdate(ctx context.Context, p record.Profile, cred credential.Credential, options ...SignOption) (*envelope.Envelope[record.Profile], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return sign(ctx, c, cred, preimage.UpdateProfile, p, func(n nonce.Nonce) ([]typed.Value, error) {
		return preimage.ProfileUpdate(p.Name, p.Icon, n), nil
	}, options)
}

// SignInvite signs ("invite:", member, nonce).
func (c *Client) SignInvite(ctx context.Context, groupID *big.Int, member string, cred credential.Credential, options ...SignOption) (*envelope.Envelope[record.MembershipAction], error) {
	action, err := record.AssembleMembershipAction(record.Invite, groupID, member)
	if err != nil {
		return nil, err
	}
	return sign(ctx, c, cred, preimage.InviteMember, action, func(n nonce.Nonce) ([]typed.Value, error) {
		return preimage.Invite(action.Address, n), nil
	}, options)
}

// SignDisable signs ("disable:", member, nonce).
func (c *Client) SignDisable(ctx context.Context, groupID *big.Int, member string, cred credential.Credential, options ...SignOption) (*envelope.Envelope[record.MembershipAction], error) {
	action, err := record.AssembleMembershipAction(record.Disable, groupID, member)
	if err != nil {
		return nil, err
	}
	return sign(ctx, c, cred, preimage.DisableMember, action, func(n nonce.Nonce) ([]typed.Value, error) {
		return preimage.Disable(action.Address, n), nil
	}, options)
}

// SignGroup signs a new group: (name, residence, phone, nonce).
func (c *Client) SignGroup(ctx context.Context, g record.Group, cred credential.Credential, options ...SignOption) (*envelope.Envelope[record.Group], error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return sign(ctx, c, cred, preimage.CreateGroup, g, func(n nonce.Nonce) ([]typed.Value, error) {
		return preimage.Group(g.Name, g.Residence, g.Phone, n), nil
	}, options)
}

// SignGroupUpdate signs ("update:", groupId, name, residence, phone, nonce).
// The group must carry its ledger id.
func (c *Client) SignGroupUpdate(ctx context.Context, g record.Group, cred credential.Credential, options ...SignOption) (*envelope.Envelope[record.Group], error) {
	if g.ID == nil {
		return nil, failure.InvalidRecord("group update needs a groupId")
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return sign(ctx, c, cred, preimage.UpdateGroup, g, func(n nonce.Nonce) ([]typed.Value, error) {
		return preimage.GroupUpdate(g.ID, g.Name, g.Residence, g.Phone, n)
	}, options)
}

// SignUserCertificate signs a single issuance: (to, certId, nonce).
func (c *Client) SignUserCertificate(ctx context.Context, uc record.UserCertificate, cred credential.Credential, options ...SignOption) (*envelope.Envelope[record.UserCertificate], error) {
	if err := uc.Validate(); err != nil {
		return nil, err
	}
	return sign(ctx, c, cred, preimage.IssueUserCertificate, uc, func(n nonce.Nonce) ([]typed.Value, error) {
		return preimage.UserCertificate(uc.To, uc.CertID, n)
	}, options)
}

// SignUserCertificates signs a batch issuance of one certificate to many
// recipients: (certId, from, to1..toN, nonce).
func (c *Client) SignUserCertificates(ctx context.Context, certID *big.Int, from string, to []string, cred credential.Credential, options ...SignOption) (*envelope.Envelope[UserCertificates], error) {
	if certID == nil || certID.Sign() < 0 {
		return nil, failure.InvalidRecord("certId must be a non-negative integer")
	}
	issuer, err := address.Parse(from)
	if err != nil {
		return nil, failure.InvalidRecord("from: %s", err)
	}
	recipients := make([]address.Address, 0, len(to))
	for _, r := range to {
		a, err := address.Parse(r)
		if err != nil {
			return nil, failure.InvalidRecord("to: %s", err)
		}
		recipients = append(recipients, a)
	}
	payload := UserCertificates{CertID: new(big.Int).Set(certID), From: issuer, Recipients: recipients}
	return sign(ctx, c, cred, preimage.IssueUserCertBatch, payload, func(n nonce.Nonce) ([]typed.Value, error) {
		return preimage.UserCertificates(payload.CertID, issuer, recipients, n)
	}, options)
}

// SignInvalidation signs ("invalidate:", userCertId, nonce).
func (c *Client) SignInvalidation(ctx context.Context, userCertID *big.Int, cred credential.Credential, options ...SignOption) (*envelope.Envelope[Invalidation], error) {
	if userCertID == nil {
		return nil, failure.InvalidRecord("userCertId is required")
	}
	payload := Invalidation{UserCertID: new(big.Int).Set(userCertID)}
	return sign(ctx, c, cred, preimage.InvalidateUserCert, payload, func(n nonce.Nonce) ([]typed.Value, error) {
		return preimage.Invalidation(payload.UserCertID, n)
	}, options)
}
