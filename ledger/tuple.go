package ledger

import (
	"math/big"
	"strings"

	"github.com/gaiax/go-gxcert/core/failure"
	"github.com/gaiax/go-gxcert/principal/address"
	"github.com/ipfs/go-cid"
)

// tuple is a positional response being read for one method.
type tuple struct {
	method string
	values []any
}

func expect(method string, values []any, arity int) (tuple, error) {
	if len(values) != arity {
		return tuple{}, failure.MalformedLedgerResponse("%s: expected %d values, got %d", method, arity, len(values))
	}
	return tuple{method, values}, nil
}

func (t tuple) malformed(i int, want string) error {
	return failure.MalformedLedgerResponse("%s: value %d is %T, expected %s", t.method, i, t.values[i], want)
}

// Integers are never routed through float64: ledger ids are uint256.
func (t tuple) bigInt(i int) (*big.Int, error) {
	switch v := t.values[i].(type) {
	case *big.Int:
		if v != nil {
			return new(big.Int).Set(v), nil
		}
	case big.Int:
		return new(big.Int).Set(&v), nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case string:
		n, ok := parseIntString(v)
		if ok {
			return n, nil
		}
	}
	return nil, t.malformed(i, "integer")
}

func parseIntString(s string) (*big.Int, bool) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return new(big.Int).SetString(s[2:], 16)
	}
	return new(big.Int).SetString(s, 10)
}

func (t tuple) str(i int) (string, error) {
	s, ok := t.values[i].(string)
	if !ok {
		return "", t.malformed(i, "string")
	}
	return s, nil
}

func (t tuple) boolean(i int) (bool, error) {
	b, ok := t.values[i].(bool)
	if !ok {
		return false, t.malformed(i, "bool")
	}
	return b, nil
}

func (t tuple) address(i int) (address.Address, error) {
	switch v := t.values[i].(type) {
	case address.Address:
		return v, nil
	case [address.Size]byte:
		return address.Address(v), nil
	case string:
		a, err := address.Parse(v)
		if err == nil {
			return a, nil
		}
	}
	return address.Undef, t.malformed(i, "address")
}

func (t tuple) cid(i int) (cid.Cid, error) {
	s, err := t.str(i)
	if err != nil {
		return cid.Undef, err
	}
	c, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, failure.New(failure.MalformedLedgerResponseName, t.method+": invalid content identifier", err)
	}
	return c, nil
}

func (t tuple) list(i int) ([]any, error) {
	l, ok := t.values[i].([]any)
	if !ok {
		return nil, t.malformed(i, "array")
	}
	return l, nil
}

func (t tuple) bigInts(i int) ([]*big.Int, error) {
	l, err := t.list(i)
	if err != nil {
		return nil, err
	}
	inner := tuple{t.method, l}
	ids := make([]*big.Int, 0, len(l))
	for j := range l {
		id, err := inner.bigInt(j)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
