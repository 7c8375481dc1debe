// Package multiformat prefixes key material with its multicodec code so an
// encoded key says which algorithm it belongs to.
package multiformat

import (
	"bytes"
	"fmt"

	"github.com/multiformats/go-varint"
)

// Tag returns b prefixed with the varint of code.
func Tag(code uint64, b []byte) []byte {
	n := varint.UvarintSize(code)
	tagged := make([]byte, n+len(b))
	varint.PutUvarint(tagged, code)
	copy(tagged[n:], b)
	return tagged
}

// Code reads the multicodec prefix of b.
func Code(b []byte) (uint64, error) {
	code, err := varint.ReadUvarint(bytes.NewReader(b))
	if err != nil {
		return 0, fmt.Errorf("reading multicodec prefix: %w", err)
	}
	return code, nil
}

// Untag strips the code prefix from b, failing when b carries another code
// or its payload is not size bytes long. A negative size accepts any length.
func Untag(code uint64, b []byte, size int) ([]byte, error) {
	tag, err := Code(b)
	if err != nil {
		return nil, err
	}
	if tag != code {
		return nil, fmt.Errorf("expected multicodec 0x%x, got 0x%x", code, tag)
	}
	payload := b[varint.UvarintSize(tag):]
	if size >= 0 && len(payload) != size {
		return nil, fmt.Errorf("invalid payload length: %d wanted: %d", len(payload), size)
	}
	return payload, nil
}
