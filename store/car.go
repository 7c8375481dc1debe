package store

import (
	"bufio"
	"fmt"
	"io"
	"iter"

	"github.com/ipfs/go-cid"
	cbor "github.com/ipfs/go-ipld-cbor"
	"github.com/ipld/go-car/util"
)

// ContentType is the value the HTTP Content-Type header should have for CARs.
// See https://www.iana.org/assignments/media-types/application/vnd.ipld.car
const ContentType = "application/vnd.ipld.car"

func init() {
	cbor.RegisterCborType(carHeader{})
}

type carHeader struct {
	Roots   []cid.Cid
	Version uint64
}

// ExportCAR streams blocks as a CARv1 archive.
func ExportCAR(roots []cid.Cid, blocks iter.Seq2[Block, error]) io.Reader {
	reader, writer := io.Pipe()
	go func() {
		h := carHeader{Roots: roots, Version: 1}
		if h.Roots == nil {
			h.Roots = []cid.Cid{}
		}
		hb, err := cbor.DumpObject(h)
		if err != nil {
			writer.CloseWithError(fmt.Errorf("writing CAR header: %w", err))
			return
		}
		if err := util.LdWrite(writer, hb); err != nil {
			writer.CloseWithError(fmt.Errorf("writing CAR header: %w", err))
			return
		}
		for block, err := range blocks {
			if err != nil {
				writer.CloseWithError(fmt.Errorf("writing CAR blocks: %w", err))
				return
			}
			if err := util.LdWrite(writer, block.CID().Bytes(), block.Bytes()); err != nil {
				writer.CloseWithError(fmt.Errorf("writing CAR blocks: %w", err))
				return
			}
		}
		writer.Close()
	}()
	return reader
}

// ImportCAR reads a CARv1 archive. Every block is re-hashed and rejected if
// it does not match its CID.
func ImportCAR(reader io.Reader) ([]cid.Cid, iter.Seq2[Block, error], error) {
	br := bufio.NewReader(reader)

	hb, err := util.LdRead(br)
	if err != nil {
		return nil, nil, err
	}

	var ch carHeader
	if err := cbor.DecodeInto(hb, &ch); err != nil {
		return nil, nil, fmt.Errorf("invalid header: %w", err)
	}

	if ch.Version != 1 {
		return nil, nil, fmt.Errorf("invalid car version: %d", ch.Version)
	}

	return ch.Roots, func(yield func(Block, error) bool) {
		for {
			id, bytes, err := util.ReadNode(br)
			if err != nil {
				if err == io.EOF {
					return
				}
				yield(nil, err)
				return
			}

			hashed, err := id.Prefix().Sum(bytes)
			if err != nil {
				yield(nil, err)
				return
			}

			if !hashed.Equals(id) {
				yield(nil, fmt.Errorf("mismatch in content integrity, name: %s, data: %s", id, hashed))
				return
			}

			if !yield(NewBlockUnsafe(id, bytes), nil) {
				return
			}
		}
	}, nil
}
