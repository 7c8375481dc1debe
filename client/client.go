package client

import (
	"context"
	"fmt"
	"time"

	"github.com/gaiax/go-gxcert/core/failure"
	"github.com/gaiax/go-gxcert/core/hash"
	"github.com/gaiax/go-gxcert/core/hash/keccak256"
	"github.com/gaiax/go-gxcert/core/nonce"
	"github.com/gaiax/go-gxcert/core/preimage"
	"github.com/gaiax/go-gxcert/core/typed"
	"github.com/gaiax/go-gxcert/envelope"
	"github.com/gaiax/go-gxcert/ledger"
	"github.com/gaiax/go-gxcert/principal/ambient"
	"github.com/gaiax/go-gxcert/principal/credential"
	"github.com/gaiax/go-gxcert/record"
	"github.com/gaiax/go-gxcert/store"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("gxcert/client")

// Client signs records and reads them back from the content store and the
// ledger. It holds no mutable state besides the advisory profile cache, so
// one client can be shared between goroutines.
type Client struct {
	store    store.Store
	ledger   *ledger.Reader
	wallet   ambient.Wallet
	profiles *ledger.ProfileCache
	timeout  time.Duration
	hasher   hash.Hasher
}

func New(options ...Option) (*Client, error) {
	cfg := clientConfig{hasher: keccak256.Hasher}
	for _, opt := range options {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.store == nil {
		ms, err := store.NewMemoryStore()
		if err != nil {
			return nil, err
		}
		cfg.store = ms
	}
	var reader *ledger.Reader
	if cfg.caller != nil {
		var err error
		reader, err = ledger.NewReader(
			cfg.caller,
			ledger.WithConcurrency(cfg.concurrency),
			ledger.WithCallTimeout(cfg.timeout),
		)
		if err != nil {
			return nil, fmt.Errorf("creating ledger reader: %w", err)
		}
	}
	profiles, err := ledger.NewProfileCache(cfg.cacheSize)
	if err != nil {
		return nil, err
	}
	return &Client{
		store:    cfg.store,
		ledger:   reader,
		wallet:   cfg.wallet,
		profiles: profiles,
		timeout:  cfg.timeout,
		hasher:   cfg.hasher,
	}, nil
}

// IsCertificate reports whether obj is shaped like a certificate.
func (c *Client) IsCertificate(obj map[string]any) bool {
	return record.IsCertificate(obj)
}

// Digest hashes a preimage with the client's hasher.
func (c *Client) Digest(values []typed.Value) (hash.Digest, error) {
	return c.hasher.Sum(typed.Pack(values...))
}

// sign runs the pipeline shared by every signing operation: resolve the
// credential, pick the nonce, build the preimage, hash it, sign the digest.
func sign[P any](
	ctx context.Context,
	c *Client,
	cred credential.Credential,
	action preimage.Action,
	payload P,
	encode func(n nonce.Nonce) ([]typed.Value, error),
	options []SignOption,
) (*envelope.Envelope[P], error) {
	cfg := signConfig{}
	for _, opt := range options {
		opt(&cfg)
	}

	signer, err := credential.Resolve(cred, c.wallet)
	if err != nil {
		return nil, err
	}

	n, err := nonce.Next(cfg.nonce)
	if err != nil {
		return nil, failure.SigningFailed("generating nonce", err)
	}

	values, err := encode(n)
	if err != nil {
		return nil, err
	}

	digest, err := c.Digest(values)
	if err != nil {
		return nil, failure.SigningFailed("hashing preimage", err)
	}

	sig, err := signer.Sign(ctx, digest.Digest())
	if err != nil {
		return nil, failure.SigningFailed(fmt.Sprintf("signing %s", action), err)
	}

	log.Debugw("signed", "action", action, "signer", signer.Address().String(), "hash", digest.Hex())

	return &envelope.Envelope[P]{
		Version:   preimage.Version,
		Action:    action,
		Signature: sig,
		Hash:      digest,
		Nonce:     n,
		Payload:   payload,
		Signer:    signer.Address(),
	}, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return ctx, func() {}
}

func (c *Client) requireLedger() error {
	if c.ledger == nil {
		return fmt.Errorf("no ledger configured")
	}
	return nil
}
