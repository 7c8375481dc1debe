// Package typed holds the primitive values that make up a signing preimage
// and packs them the way Solidity's abi.encodePacked does, so a contract can
// recompute the same bytes from the same fields.
package typed

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/gaiax/go-gxcert/principal/address"
)

type Kind uint8

const (
	KindString Kind = iota + 1
	KindAddress
	KindUint256
	KindBytes32
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindAddress:
		return "address"
	case KindUint256:
		return "uint256"
	case KindBytes32:
		return "bytes32"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a typed primitive. The packed form is computed at construction and
// never changes.
type Value struct {
	kind   Kind
	packed []byte
}

func (v Value) Kind() Kind {
	return v.kind
}

// Packed returns the tightly packed encoding of the value.
func (v Value) Packed() []byte {
	return v.packed
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return fmt.Sprintf("string(%q)", string(v.packed))
	case KindUint256:
		return fmt.Sprintf("uint256(%s)", new(big.Int).SetBytes(v.packed))
	default:
		return fmt.Sprintf("%s(0x%s)", v.kind, hex.EncodeToString(v.packed))
	}
}

func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && string(v.packed) == string(o.packed)
}

func String(s string) Value {
	return Value{KindString, []byte(s)}
}

// Address packs the 20 address bytes. The textual form is lower-case by
// construction, so differently cased inputs produce identical values.
func Address(a address.Address) Value {
	b := make([]byte, address.Size)
	copy(b, a[:])
	return Value{KindAddress, b}
}

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Uint256 packs n as a 32 byte big-endian integer. Negative values and values
// wider than 256 bits are rejected.
func Uint256(n *big.Int) (Value, error) {
	if n == nil {
		return Value{}, fmt.Errorf("uint256: nil integer")
	}
	if n.Sign() < 0 {
		return Value{}, fmt.Errorf("uint256: negative integer %s", n)
	}
	if n.Cmp(maxUint256) > 0 {
		return Value{}, fmt.Errorf("uint256: integer %s overflows 256 bits", n)
	}
	b := make([]byte, 32)
	n.FillBytes(b)
	return Value{KindUint256, b}, nil
}

func Bytes32(b [32]byte) Value {
	c := make([]byte, 32)
	copy(c, b[:])
	return Value{KindBytes32, c}
}

// Pack concatenates the packed encodings of values in order.
func Pack(values ...Value) []byte {
	size := 0
	for _, v := range values {
		size += len(v.packed)
	}
	out := make([]byte, 0, size)
	for _, v := range values {
		out = append(out, v.packed...)
	}
	return out
}
