package client

import (
	"context"
	"errors"
	"math/big"

	"github.com/gaiax/go-gxcert/core/failure"
	"github.com/gaiax/go-gxcert/ledger"
	"github.com/gaiax/go-gxcert/principal/address"
	"github.com/gaiax/go-gxcert/record"
	"github.com/ipfs/go-cid"
)

// CertificateView is a ledger registration joined with the stored document.
type CertificateView struct {
	ID          *big.Int           `json:"certId"`
	CID         string             `json:"cid"`
	Certificate record.Certificate `json:"certificate"`
}

// UploadCertificate serializes a certificate and stores it.
func (c *Client) UploadCertificate(ctx context.Context, cert record.Certificate) (cid.Cid, error) {
	if err := cert.Validate(); err != nil {
		return cid.Undef, err
	}
	data, err := record.EncodeCertificate(cert)
	if err != nil {
		return cid.Undef, err
	}
	return c.put(ctx, data)
}

// UploadImage stores raw image bytes, e.g. a certificate image or a profile
// icon, and returns the identifier to reference from a record.
func (c *Client) UploadImage(ctx context.Context, data []byte) (cid.Cid, error) {
	return c.put(ctx, data)
}

func (c *Client) put(ctx context.Context, data []byte) (cid.Cid, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.store.Put(ctx, data)
}

// GetFile returns stored bytes, or a NotFound failure.
func (c *Client) GetFile(ctx context.Context, id cid.Cid) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.store.Get(ctx, id)
}

// GetCertificate reads and validates a stored certificate.
func (c *Client) GetCertificate(ctx context.Context, id cid.Cid) (record.Certificate, error) {
	data, err := c.GetFile(ctx, id)
	if err != nil {
		return record.Certificate{}, err
	}
	return record.DecodeCertificate(data)
}

// GetCertificateByID resolves a ledger certificate id to its document.
func (c *Client) GetCertificateByID(ctx context.Context, certID *big.Int) (CertificateView, error) {
	if err := c.requireLedger(); err != nil {
		return CertificateView{}, err
	}
	entry, err := c.ledger.Certificate(ctx, certID)
	if err != nil {
		return CertificateView{}, err
	}
	return c.view(ctx, entry)
}

func (c *Client) view(ctx context.Context, entry ledger.CertificateEntry) (CertificateView, error) {
	cert, err := c.GetCertificate(ctx, entry.CID)
	if err != nil {
		return CertificateView{}, err
	}
	return CertificateView{ID: entry.ID, CID: entry.CID.String(), Certificate: cert}, nil
}

// GetGroupCertificates reads every certificate of a group. A certificate
// whose registration or document cannot be read is skipped.
func (c *Client) GetGroupCertificates(ctx context.Context, groupID *big.Int) ([]CertificateView, error) {
	if err := c.requireLedger(); err != nil {
		return nil, err
	}
	entries, err := c.ledger.GroupCertificates(ctx, groupID)
	if err != nil {
		return nil, err
	}
	views := make([]CertificateView, 0, len(entries))
	for _, entry := range entries {
		v, err := c.view(ctx, entry)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warnw("skipping unreadable certificate", "certId", entry.ID.String(), "cid", entry.CID.String(), "error", err)
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

func (c *Client) GetGroup(ctx context.Context, groupID *big.Int) (record.Group, error) {
	if err := c.requireLedger(); err != nil {
		return record.Group{}, err
	}
	return c.ledger.Group(ctx, groupID)
}

// GetGroups reads the groups addr belongs to.
func (c *Client) GetGroups(ctx context.Context, addr string) ([]record.Group, error) {
	a, err := parseAddress(addr)
	if err != nil {
		return nil, err
	}
	if err := c.requireLedger(); err != nil {
		return nil, err
	}
	return c.ledger.Groups(ctx, a)
}

// GetProfile reads the profile of addr from the ledger and refreshes the
// cache with it.
func (c *Client) GetProfile(ctx context.Context, addr string) (record.Profile, error) {
	a, err := parseAddress(addr)
	if err != nil {
		return record.Profile{}, err
	}
	if err := c.requireLedger(); err != nil {
		return record.Profile{}, err
	}
	p, err := c.ledger.Profile(ctx, a)
	if err != nil {
		if errors.Is(err, failure.ErrNotFound) {
			c.profiles.Remove(a)
		}
		return record.Profile{}, err
	}
	c.profiles.Put(a, p)
	return p, nil
}

// GetCachedProfile returns the cached profile of addr when there is one and
// reads it from the ledger otherwise. The result may be stale.
func (c *Client) GetCachedProfile(ctx context.Context, addr string) (record.Profile, error) {
	a, err := parseAddress(addr)
	if err != nil {
		return record.Profile{}, err
	}
	if p, ok := c.profiles.Get(a); ok {
		log.Debugw("profile cache hit", "address", a.String())
		return p, nil
	}
	return c.GetProfile(ctx, addr)
}

// GetIssuedUserCertificates reads every issuance made by addr.
func (c *Client) GetIssuedUserCertificates(ctx context.Context, addr string) ([]record.UserCertificate, error) {
	a, err := parseAddress(addr)
	if err != nil {
		return nil, err
	}
	if err := c.requireLedger(); err != nil {
		return nil, err
	}
	return c.ledger.IssuedUserCertificates(ctx, a)
}

// GetReceivedUserCertificates reads every issuance addressed to addr.
func (c *Client) GetReceivedUserCertificates(ctx context.Context, addr string) ([]record.UserCertificate, error) {
	a, err := parseAddress(addr)
	if err != nil {
		return nil, err
	}
	if err := c.requireLedger(); err != nil {
		return nil, err
	}
	return c.ledger.ReceivedUserCertificates(ctx, a)
}

func parseAddress(addr string) (address.Address, error) {
	a, err := address.Parse(addr)
	if err != nil {
		return address.Undef, failure.InvalidRecord("address: %s", err)
	}
	return a, nil
}
