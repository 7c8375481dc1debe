// Package nonce generates the 32 byte values threaded through every signing
// operation so that signing identical content twice yields distinct digests.
package nonce

import (
	crand "crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

const Size = 32

type Nonce [Size]byte

// Generate returns a fresh cryptographically random nonce.
func Generate() (Nonce, error) {
	var n Nonce
	if _, err := crand.Read(n[:]); err != nil {
		return Nonce{}, fmt.Errorf("reading random nonce: %w", err)
	}
	return n, nil
}

// Next returns supplied verbatim when it is non-nil, otherwise a fresh
// nonce.
func Next(supplied *Nonce) (Nonce, error) {
	if supplied != nil {
		return *supplied, nil
	}
	return Generate()
}

// Parse reads a hex nonce of at most 32 bytes, with or without 0x. Shorter
// values are left padded with zeros, so "0x01" is 31 zero bytes then 0x01.
// Empty input, with or without the prefix, is an error.
func Parse(str string) (Nonce, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(str, "0x"), "0X")
	if s == "" {
		return Nonce{}, fmt.Errorf("nonce %q is empty", str)
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Nonce{}, fmt.Errorf("decoding nonce %q: %w", str, err)
	}
	if len(b) > Size {
		return Nonce{}, fmt.Errorf("nonce %q is longer than %d bytes", str, Size)
	}
	var n Nonce
	copy(n[Size-len(b):], b)
	return n, nil
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Nonce {
	n, err := Parse(str)
	if err != nil {
		panic(err)
	}
	return n
}

func (n Nonce) String() string {
	return "0x" + hex.EncodeToString(n[:])
}

func (n Nonce) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

func (n *Nonce) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	parsed, err := Parse(str)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
