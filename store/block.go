package store

import "github.com/ipfs/go-cid"

type Block interface {
	CID() cid.Cid
	Bytes() []byte
}

type block struct {
	id    cid.Cid
	bytes []byte
}

func (b *block) CID() cid.Cid {
	return b.id
}

func (b *block) Bytes() []byte {
	return b.bytes
}

// NewBlock pairs bytes with the CID computed from them.
func NewBlock(data []byte) (Block, error) {
	id, err := Prefix.Sum(data)
	if err != nil {
		return nil, err
	}
	return &block{id, data}, nil
}

// NewBlockUnsafe pairs bytes with a CID without checking that they match.
func NewBlockUnsafe(id cid.Cid, bytes []byte) Block {
	return &block{id, bytes}
}
