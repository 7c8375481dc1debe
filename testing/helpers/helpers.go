package helpers

import (
	crand "crypto/rand"

	"github.com/gaiax/go-gxcert/principal/address"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-multihash"
)

// Must takes return values from a function and returns the non-error one. If
// the error value is non-nil then it panics.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

func RandomBytes(size int) []byte {
	bytes := make([]byte, size)
	_, _ = crand.Read(bytes)
	return bytes
}

// RandomCID returns the raw CIDv1 of random bytes, the shape the content
// store hands out.
func RandomCID() cid.Cid {
	return Must(cid.Prefix{
		Version:  1,
		Codec:    uint64(multicodec.Raw),
		MhType:   multihash.SHA2_256,
		MhLength: -1,
	}.Sum(RandomBytes(10)))
}

func RandomAddress() address.Address {
	var a address.Address
	copy(a[:], RandomBytes(address.Size))
	return a
}
