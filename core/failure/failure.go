package failure

import (
	"fmt"
	"runtime"

	"github.com/pkg/errors"
)

const (
	InvalidRecordName           = "InvalidRecord"
	MissingCredentialName       = "MissingCredential"
	NotFoundName                = "NotFound"
	MalformedLedgerResponseName = "MalformedLedgerResponse"
	SigningFailedName           = "SigningFailed"
)

// Named is an error that you can read a name from
type Named interface {
	Name() string
}

// WithStackTrace is an error that you can read a stack trace from
type WithStackTrace interface {
	Stack() string
}

type Failure interface {
	error
	Named
	WithStackTrace
}

// Sentinels for use with errors.Is. A failure matches the sentinel that
// carries the same name.
var (
	ErrInvalidRecord           = sentinel(InvalidRecordName, "the record is invalid")
	ErrMissingCredential       = sentinel(MissingCredentialName, "no private key or signer address supplied")
	ErrNotFound                = sentinel(NotFoundName, "not found")
	ErrMalformedLedgerResponse = sentinel(MalformedLedgerResponseName, "malformed ledger response")
	ErrSigningFailed           = sentinel(SigningFailedName, "signing failed")
)

type failure struct {
	name    string
	message string
	cause   error
	stack   errors.StackTrace
}

func (f *failure) Name() string {
	return f.name
}

func (f *failure) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %s", f.message, f.cause)
	}
	return f.message
}

func (f *failure) Unwrap() error {
	return f.cause
}

// Is matches any failure with the same name, so wrapped failures still
// compare equal to their sentinel.
func (f *failure) Is(target error) bool {
	named, ok := target.(Named)
	if !ok {
		return false
	}
	return named.Name() == f.name
}

func (f *failure) Stack() string {
	return fmt.Sprintf("%+v", f.stack)
}

func sentinel(name, message string) error {
	return &failure{name: name, message: message}
}

// New creates a named failure capturing the stack of the caller. The cause
// may be nil.
func New(name string, message string, cause error) Failure {
	return &failure{name, message, cause, currentStackTrace()}
}

func currentStackTrace() errors.StackTrace {
	const depth = 32

	var pcs [depth]uintptr
	n := runtime.Callers(4, pcs[:])

	f := make(errors.StackTrace, n)
	for i := 0; i < n; i++ {
		f[i] = errors.Frame(pcs[i])
	}
	return f
}

func InvalidRecord(format string, args ...any) Failure {
	return New(InvalidRecordName, fmt.Sprintf("the record is invalid: "+format, args...), nil)
}

func MissingCredential(message string) Failure {
	return New(MissingCredentialName, message, nil)
}

func NotFound(format string, args ...any) Failure {
	return New(NotFoundName, fmt.Sprintf(format, args...), nil)
}

func MalformedLedgerResponse(format string, args ...any) Failure {
	return New(MalformedLedgerResponseName, fmt.Sprintf(format, args...), nil)
}

func SigningFailed(message string, cause error) Failure {
	return New(SigningFailedName, message, cause)
}

// NameOf returns the failure name of err, or the empty string if err (or
// anything it wraps) is not named.
func NameOf(err error) string {
	var named Named
	if errors.As(err, &named) {
		return named.Name()
	}
	return ""
}
