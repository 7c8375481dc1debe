package address

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gaiax/go-gxcert/core/hash/keccak256"
)

const Size = 20

// Address is an EVM account address. Its textual form is always lower-case
// hex with a 0x prefix.
type Address [Size]byte

// Undef is the zero address, used to signal "no address".
var Undef = Address{}

// Parse reads a hex address in any letter case, with or without the 0x
// prefix.
func Parse(str string) (Address, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(str, "0x"), "0X")
	if len(s) != Size*2 {
		return Undef, fmt.Errorf("invalid address length: %q", str)
	}
	b, err := hex.DecodeString(strings.ToLower(s))
	if err != nil {
		return Undef, fmt.Errorf("decoding address %q: %w", str, err)
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// Normalize returns the canonical lower-case form of an address string.
func Normalize(str string) (string, error) {
	a, err := Parse(str)
	if err != nil {
		return "", err
	}
	return a.String(), nil
}

// FromPublicKey derives the address from a 65 byte uncompressed public key
// (0x04 || X || Y).
func FromPublicKey(uncompressed []byte) (Address, error) {
	if len(uncompressed) != 65 || uncompressed[0] != 0x04 {
		return Undef, fmt.Errorf("invalid uncompressed public key")
	}
	sum := keccak256.Sum(uncompressed[1:])
	var a Address
	copy(a[:], sum[len(sum)-Size:])
	return a, nil
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) Defined() bool {
	return a != Undef
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	parsed, err := Parse(str)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
