// Package store is the content store collaborator: bytes in, content
// identifier out, and back again.
package store

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/gaiax/go-gxcert/core/failure"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-multihash"
)

// Prefix is how content identifiers are derived: CIDv1, raw codec,
// sha2-256.
var Prefix = cid.Prefix{
	Version:  1,
	Codec:    uint64(multicodec.Raw),
	MhType:   multihash.SHA2_256,
	MhLength: -1,
}

type Reader interface {
	// Get returns the bytes stored under id, or a NotFound failure.
	Get(ctx context.Context, id cid.Cid) ([]byte, error)
}

type Writer interface {
	// Put stores data and returns its content identifier. Putting the same
	// bytes twice returns the same identifier.
	Put(ctx context.Context, data []byte) (cid.Cid, error)
}

type Store interface {
	Reader
	Writer
}

// MemoryStore keeps blocks in insertion order in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	keys []string
	blks map[string]Block
}

var _ Store = (*MemoryStore)(nil)

func (ms *MemoryStore) Put(ctx context.Context, data []byte) (cid.Cid, error) {
	b, err := NewBlock(data)
	if err != nil {
		return cid.Undef, fmt.Errorf("hashing content: %w", err)
	}
	if err := ms.PutBlock(b); err != nil {
		return cid.Undef, err
	}
	return b.CID(), nil
}

// PutBlock stores a block whose CID has already been computed.
func (ms *MemoryStore) PutBlock(b Block) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	k := b.CID().KeyString()
	if _, ok := ms.blks[k]; ok {
		return nil
	}
	data := make([]byte, len(b.Bytes()))
	copy(data, b.Bytes())
	ms.blks[k] = NewBlockUnsafe(b.CID(), data)
	ms.keys = append(ms.keys, k)
	return nil
}

func (ms *MemoryStore) Get(ctx context.Context, id cid.Cid) ([]byte, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	b, ok := ms.blks[id.KeyString()]
	if !ok {
		return nil, failure.NotFound("content not found: %s", id)
	}
	data := make([]byte, len(b.Bytes()))
	copy(data, b.Bytes())
	return data, nil
}

func (ms *MemoryStore) Has(id cid.Cid) bool {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	_, ok := ms.blks[id.KeyString()]
	return ok
}

func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.keys)
}

// Iterator yields blocks in the order they were first stored. It iterates a
// snapshot, so concurrent puts are not observed.
func (ms *MemoryStore) Iterator() iter.Seq2[Block, error] {
	ms.mu.RLock()
	keys := make([]string, len(ms.keys))
	copy(keys, ms.keys)
	blks := make(map[string]Block, len(ms.blks))
	for k, v := range ms.blks {
		blks[k] = v
	}
	ms.mu.RUnlock()

	return func(yield func(Block, error) bool) {
		for _, k := range keys {
			v, ok := blks[k]
			var err error
			if !ok {
				err = fmt.Errorf("missing block for key: %x", k)
			}
			if !yield(v, err) {
				return
			}
		}
	}
}

// Option is an option configuring a memory store.
type Option func(cfg *msConfig) error

type msConfig struct {
	blks     []Block
	blksiter iter.Seq2[Block, error]
}

// WithBlocks configures the blocks the store should contain.
func WithBlocks(blks []Block) Option {
	return func(cfg *msConfig) error {
		cfg.blks = blks
		return nil
	}
}

// WithBlocksIterator configures the blocks the store should contain.
func WithBlocksIterator(blks iter.Seq2[Block, error]) Option {
	return func(cfg *msConfig) error {
		cfg.blksiter = blks
		return nil
	}
}

func NewMemoryStore(options ...Option) (*MemoryStore, error) {
	cfg := msConfig{}
	for _, opt := range options {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	ms := &MemoryStore{
		keys: []string{},
		blks: map[string]Block{},
	}
	for _, b := range cfg.blks {
		if err := ms.PutBlock(b); err != nil {
			return nil, err
		}
	}
	if cfg.blksiter != nil {
		for b, err := range cfg.blksiter {
			if err != nil {
				return nil, err
			}
			if err := ms.PutBlock(b); err != nil {
				return nil, err
			}
		}
	}
	return ms, nil
}
