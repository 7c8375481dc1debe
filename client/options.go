package client

import (
	"fmt"
	"time"

	"github.com/gaiax/go-gxcert/core/hash"
	"github.com/gaiax/go-gxcert/core/nonce"
	"github.com/gaiax/go-gxcert/ledger"
	"github.com/gaiax/go-gxcert/principal/ambient"
	"github.com/gaiax/go-gxcert/store"
)

// Option is an option configuring a client.
type Option func(cfg *clientConfig) error

type clientConfig struct {
	store       store.Store
	caller      ledger.Caller
	concurrency int
	wallet      ambient.Wallet
	cacheSize   int
	timeout     time.Duration
	hasher      hash.Hasher
}

// WithStore configures the content store. Defaults to an in-memory store.
func WithStore(s store.Store) Option {
	return func(cfg *clientConfig) error {
		cfg.store = s
		return nil
	}
}

// WithLedger configures the contract caller used for ledger reads. Without
// it, ledger backed getters fail.
func WithLedger(caller ledger.Caller) Option {
	return func(cfg *clientConfig) error {
		cfg.caller = caller
		return nil
	}
}

// WithLedgerConcurrency configures how many item reads batched ledger
// getters keep in flight.
func WithLedgerConcurrency(n int) Option {
	return func(cfg *clientConfig) error {
		cfg.concurrency = n
		return nil
	}
}

// WithWallet configures the wallet that signs for ambient signer
// credentials.
func WithWallet(w ambient.Wallet) Option {
	return func(cfg *clientConfig) error {
		cfg.wallet = w
		return nil
	}
}

// WithProfileCacheSize configures the size of the address to profile cache.
// Pass a value less than 1 to use [ledger.ProfileCacheSize].
func WithProfileCacheSize(size int) Option {
	return func(cfg *clientConfig) error {
		cfg.cacheSize = size
		return nil
	}
}

// WithCallTimeout bounds every content store and ledger call. Hashing and
// signing are not bounded; an ambient signer waits on the caller's context.
func WithCallTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d < 0 {
			return fmt.Errorf("negative call timeout: %s", d)
		}
		cfg.timeout = d
		return nil
	}
}

// WithHasher configures the hasher applied to packed preimages. Only a
// keccak-256 hasher produces digests the contract can verify.
func WithHasher(h hash.Hasher) Option {
	return func(cfg *clientConfig) error {
		cfg.hasher = h
		return nil
	}
}

// SignOption is an option for a single signing call.
type SignOption func(cfg *signConfig)

type signConfig struct {
	nonce *nonce.Nonce
}

// WithNonce signs with the given nonce instead of a fresh random one, e.g.
// to reproduce an earlier signature.
func WithNonce(n nonce.Nonce) SignOption {
	return func(cfg *signConfig) {
		cfg.nonce = &n
	}
}
