package keccak256

import (
	"encoding/hex"
	"testing"

	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	require.Equal(t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		hex.EncodeToString(Sum(nil)),
	)
	require.Equal(t,
		"3ac225168df54212a25c1c01fd35bebfea408fdac2e31ddd6f80a4bbf9a5f1cb",
		hex.EncodeToString(Sum([]byte("a"))),
	)
	require.Equal(t, Sum([]byte("ab")), Sum([]byte("a"), []byte("b")))
}

func TestHasher(t *testing.T) {
	d, err := Hasher.Sum([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, uint64(Code), d.Code())
	require.Equal(t, uint64(Size), d.Size())
	require.Equal(t, Sum([]byte("a")), d.Digest())
	require.Equal(t, "0x3ac225168df54212a25c1c01fd35bebfea408fdac2e31ddd6f80a4bbf9a5f1cb", d.Hex())

	decoded, err := multihash.Decode(d.Bytes())
	require.NoError(t, err)
	require.Equal(t, uint64(multihash.KECCAK_256), decoded.Code)
	require.Equal(t, d.Digest(), decoded.Digest)
}

func TestHashMessage(t *testing.T) {
	require.Equal(t,
		"d9eba16ed0ecae432b71fe008c98cc872bb4cc214d3220a36f365326cf807d68",
		hex.EncodeToString(HashMessage([]byte("hello world"))),
	)
}
