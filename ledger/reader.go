package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/gaiax/go-gxcert/core/failure"
	"github.com/gaiax/go-gxcert/principal/address"
	"github.com/gaiax/go-gxcert/record"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/sync/errgroup"
)

var log = logging.Logger("gxcert/ledger")

// DefaultConcurrency bounds the number of item reads in flight for batched
// getters.
const DefaultConcurrency = 8

// Option is an option configuring a ledger reader.
type Option func(cfg *readerConfig) error

type readerConfig struct {
	concurrency int
	timeout     time.Duration
}

// WithConcurrency configures how many item reads a batched getter runs at
// once. Values below 1 select [DefaultConcurrency].
func WithConcurrency(n int) Option {
	return func(cfg *readerConfig) error {
		cfg.concurrency = n
		return nil
	}
}

// WithCallTimeout bounds every individual contract call. Zero means no
// bound beyond the caller's context.
func WithCallTimeout(d time.Duration) Option {
	return func(cfg *readerConfig) error {
		if d < 0 {
			return fmt.Errorf("negative call timeout: %s", d)
		}
		cfg.timeout = d
		return nil
	}
}

type Reader struct {
	caller      Caller
	concurrency int
	timeout     time.Duration
}

func NewReader(caller Caller, options ...Option) (*Reader, error) {
	if caller == nil {
		return nil, fmt.Errorf("missing ledger caller")
	}
	cfg := readerConfig{concurrency: DefaultConcurrency}
	for _, opt := range options {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.concurrency < 1 {
		cfg.concurrency = DefaultConcurrency
	}
	return &Reader{caller, cfg.concurrency, cfg.timeout}, nil
}

func (r *Reader) call(ctx context.Context, method string, args ...any) ([]any, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	values, err := r.caller.Call(ctx, method, args...)
	if err != nil {
		if errors.Is(err, failure.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, failure.NotFound("%s%v: not found", method, args)
	}
	return values, nil
}

// Certificate reads getCert(certId) -> (certId, groupId, cid).
func (r *Reader) Certificate(ctx context.Context, id *big.Int) (CertificateEntry, error) {
	values, err := r.call(ctx, MethodGetCert, id)
	if err != nil {
		return CertificateEntry{}, err
	}
	t, err := expect(MethodGetCert, values, 3)
	if err != nil {
		return CertificateEntry{}, err
	}
	certID, err := t.bigInt(0)
	if err != nil {
		return CertificateEntry{}, err
	}
	groupID, err := t.bigInt(1)
	if err != nil {
		return CertificateEntry{}, err
	}
	c, err := t.cid(2)
	if err != nil {
		return CertificateEntry{}, err
	}
	return CertificateEntry{ID: certID, GroupID: groupID, CID: c}, nil
}

// Group reads getGroup(groupId) -> (groupId, name, residence, phone,
// members) where each member is (name, address, icon).
func (r *Reader) Group(ctx context.Context, id *big.Int) (record.Group, error) {
	values, err := r.call(ctx, MethodGetGroup, id)
	if err != nil {
		return record.Group{}, err
	}
	t, err := expect(MethodGetGroup, values, 5)
	if err != nil {
		return record.Group{}, err
	}
	groupID, err := t.bigInt(0)
	if err != nil {
		return record.Group{}, err
	}
	var fields [3]string
	for i := range fields {
		if fields[i], err = t.str(i + 1); err != nil {
			return record.Group{}, err
		}
	}
	rawMembers, err := t.list(4)
	if err != nil {
		return record.Group{}, err
	}
	members := make([]record.Member, 0, len(rawMembers))
	for _, raw := range rawMembers {
		m, err := member(raw)
		if err != nil {
			return record.Group{}, err
		}
		members = append(members, m)
	}
	return record.Group{
		ID:        groupID,
		Name:      fields[0],
		Residence: fields[1],
		Phone:     fields[2],
		Members:   members,
	}, nil
}

func member(raw any) (record.Member, error) {
	values, ok := raw.([]any)
	if !ok {
		return record.Member{}, failure.MalformedLedgerResponse("%s: member is %T, expected tuple", MethodGetGroup, raw)
	}
	t, err := expect(MethodGetGroup+" member", values, 3)
	if err != nil {
		return record.Member{}, err
	}
	name, err := t.str(0)
	if err != nil {
		return record.Member{}, err
	}
	addr, err := t.address(1)
	if err != nil {
		return record.Member{}, err
	}
	icon, err := t.str(2)
	if err != nil {
		return record.Member{}, err
	}
	return record.Member{Name: name, Address: addr, Icon: icon}, nil
}

// Profile reads getProfile(address) -> (name, email, icon).
func (r *Reader) Profile(ctx context.Context, addr address.Address) (record.Profile, error) {
	values, err := r.call(ctx, MethodGetProfile, addr.String())
	if err != nil {
		return record.Profile{}, err
	}
	t, err := expect(MethodGetProfile, values, 3)
	if err != nil {
		return record.Profile{}, err
	}
	var fields [3]string
	for i := range fields {
		if fields[i], err = t.str(i); err != nil {
			return record.Profile{}, err
		}
	}
	if fields[0] == "" {
		return record.Profile{}, failure.NotFound("profile not found: %s", addr)
	}
	return record.Profile{Name: fields[0], Email: fields[1], Icon: fields[2]}, nil
}

// UserCertificate reads getUserCert(userCertId) -> (userCertId, certId,
// from, to, timestamp, invalidated).
func (r *Reader) UserCertificate(ctx context.Context, id *big.Int) (record.UserCertificate, error) {
	values, err := r.call(ctx, MethodGetUserCert, id)
	if err != nil {
		return record.UserCertificate{}, err
	}
	t, err := expect(MethodGetUserCert, values, 6)
	if err != nil {
		return record.UserCertificate{}, err
	}
	userCertID, err := t.bigInt(0)
	if err != nil {
		return record.UserCertificate{}, err
	}
	certID, err := t.bigInt(1)
	if err != nil {
		return record.UserCertificate{}, err
	}
	from, err := t.address(2)
	if err != nil {
		return record.UserCertificate{}, err
	}
	to, err := t.address(3)
	if err != nil {
		return record.UserCertificate{}, err
	}
	timestamp, err := t.bigInt(4)
	if err != nil {
		return record.UserCertificate{}, err
	}
	invalidated, err := t.boolean(5)
	if err != nil {
		return record.UserCertificate{}, err
	}
	return record.UserCertificate{
		CertID:      certID,
		From:        from,
		To:          to,
		Timestamp:   timestamp,
		UserCertID:  userCertID,
		Invalidated: invalidated,
	}, nil
}

func (r *Reader) ids(ctx context.Context, method string, arg any) ([]*big.Int, error) {
	values, err := r.call(ctx, method, arg)
	if err != nil {
		if errors.Is(err, failure.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	t, err := expect(method, values, 1)
	if err != nil {
		return nil, err
	}
	return t.bigInts(0)
}

// GroupIDs lists the groups addr is a member of.
func (r *Reader) GroupIDs(ctx context.Context, addr address.Address) ([]*big.Int, error) {
	return r.ids(ctx, MethodGetGroupIDs, addr.String())
}

// GroupCertificateIDs lists the certificates registered to a group.
func (r *Reader) GroupCertificateIDs(ctx context.Context, groupID *big.Int) ([]*big.Int, error) {
	return r.ids(ctx, MethodGetGroupCertIDs, groupID)
}

// Groups reads every group addr is a member of. Unreadable groups are
// skipped.
func (r *Reader) Groups(ctx context.Context, addr address.Address) ([]record.Group, error) {
	ids, err := r.GroupIDs(ctx, addr)
	if err != nil {
		return nil, err
	}
	return fetchAll(ctx, r.concurrency, ids, r.Group)
}

// GroupCertificates reads every certificate registered to a group.
// Unreadable certificates are skipped.
func (r *Reader) GroupCertificates(ctx context.Context, groupID *big.Int) ([]CertificateEntry, error) {
	ids, err := r.GroupCertificateIDs(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return fetchAll(ctx, r.concurrency, ids, r.Certificate)
}

// IssuedUserCertificates reads every issuance made by addr. Unreadable
// issuances are skipped.
func (r *Reader) IssuedUserCertificates(ctx context.Context, addr address.Address) ([]record.UserCertificate, error) {
	ids, err := r.ids(ctx, MethodGetIssuedUserCertIDs, addr.String())
	if err != nil {
		return nil, err
	}
	return fetchAll(ctx, r.concurrency, ids, r.UserCertificate)
}

// ReceivedUserCertificates reads every issuance addressed to addr.
// Unreadable issuances are skipped.
func (r *Reader) ReceivedUserCertificates(ctx context.Context, addr address.Address) ([]record.UserCertificate, error) {
	ids, err := r.ids(ctx, MethodGetReceivedUserCertIDs, addr.String())
	if err != nil {
		return nil, err
	}
	return fetchAll(ctx, r.concurrency, ids, r.UserCertificate)
}

// fetchAll reads every id with at most limit reads in flight. A failed item
// is logged and dropped; only cancellation of ctx fails the whole batch.
// Results keep the order of ids.
func fetchAll[T any](ctx context.Context, limit int, ids []*big.Int, fetch func(context.Context, *big.Int) (T, error)) ([]T, error) {
	slots := make([]*T, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			item, err := fetch(gctx, id)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Warnw("skipping unreadable item", "id", id.String(), "error", err)
				return nil
			}
			slots[i] = &item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(ids))
	for _, item := range slots {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}
