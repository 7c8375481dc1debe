// Package ledger reads certificate, group, profile and issuance state from
// the on-chain contract.
//
// The contract returns positional tuples. Every tuple is checked for arity
// and element types and converted into a named struct here, so nothing
// outside this package indexes into a raw response.
package ledger

import (
	"context"
	"math/big"

	"github.com/ipfs/go-cid"
)

// Contract methods queried by [Reader].
const (
	MethodGetCert                = "getCert"
	MethodGetGroup               = "getGroup"
	MethodGetGroupIDs            = "getGroupIds"
	MethodGetGroupCertIDs        = "getGroupCertIds"
	MethodGetProfile             = "getProfile"
	MethodGetUserCert            = "getUserCert"
	MethodGetIssuedUserCertIDs   = "getIssuedUserCertIds"
	MethodGetReceivedUserCertIDs = "getReceivedUserCertIds"
)

// Caller performs a read-only contract call and returns the positional
// result tuple. Values are *big.Int for integers, string for strings and
// addresses, bool, or []any for arrays and nested tuples. An empty tuple
// means "not found".
type Caller interface {
	Call(ctx context.Context, method string, args ...any) ([]any, error)
}

// CallerFunc adapts a function to the [Caller] interface.
type CallerFunc func(ctx context.Context, method string, args ...any) ([]any, error)

func (f CallerFunc) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	return f(ctx, method, args...)
}

// CertificateEntry is the on-chain registration of a stored certificate.
type CertificateEntry struct {
	ID      *big.Int
	GroupID *big.Int
	CID     cid.Cid
}
