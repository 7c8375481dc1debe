package keccak256

import (
	"fmt"
	"strconv"

	"github.com/gaiax/go-gxcert/core/hash"
	"github.com/multiformats/go-multihash"
	"golang.org/x/crypto/sha3"
)

// keccak-256 (the pre-standard variant used by the EVM)
const Code = multihash.KECCAK_256

// keccak-256 hash has a 32-byte sum
const Size = 32

const messagePrefix = "\x19Ethereum Signed Message:\n"

type hasher struct{}

func (hasher) Code() uint64 {
	return Code
}

func (hasher) Size() uint64 {
	return Size
}

func (hasher) Sum(b []byte) (hash.Digest, error) {
	sum := Sum(b)
	d, err := multihash.Encode(sum, Code)
	if err != nil {
		return nil, fmt.Errorf("encoding multihash: %w", err)
	}
	return hash.NewDigest(Code, Size, sum, d), nil
}

var Hasher = hasher{}

// Sum returns the raw keccak-256 of b.
func Sum(b ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, p := range b {
		h.Write(p)
	}
	return h.Sum(nil)
}

// HashMessage returns the EIP-191 personal message hash of msg. This is what
// wallets sign for personal_sign, and what a contract reconstructs before
// ecrecover.
func HashMessage(msg []byte) []byte {
	return Sum([]byte(messagePrefix+strconv.Itoa(len(msg))), msg)
}
