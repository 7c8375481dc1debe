package record

import (
	"encoding/json"
	"math"
	"math/big"
	"reflect"

	"github.com/gaiax/go-gxcert/core/failure"
)

// Certificate is the content-addressed certificate document. Once stored its
// bytes never change; an edit is a new certificate with a new CID.
type Certificate struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	GroupID     *big.Int       `json:"groupId"`
	Context     map[string]any `json:"context"`
}

// NewCertificate builds a certificate. A nil context is replaced with an
// empty one; a nil group id is rejected.
func NewCertificate(title, description, image string, groupID *big.Int, context map[string]any) (Certificate, error) {
	if context == nil {
		context = map[string]any{}
	}
	c := Certificate{
		Title:       title,
		Description: description,
		Image:       image,
		GroupID:     groupID,
		Context:     context,
	}
	if err := c.Validate(); err != nil {
		return Certificate{}, err
	}
	c.GroupID = new(big.Int).Set(groupID)
	return c, nil
}

// Validate applies the rules of [ParseCertificate] to a typed value. The
// zero Certificate is invalid.
func (c Certificate) Validate() error {
	if c.GroupID == nil {
		return failure.InvalidRecord("groupId is required")
	}
	if c.GroupID.Sign() < 0 {
		return failure.InvalidRecord("groupId must not be negative")
	}
	if c.Context == nil {
		return failure.InvalidRecord("context must be an object")
	}
	return checkContext(c.Context)
}

// ParseCertificate validates an untyped object, e.g. one decoded from JSON,
// and converts it to a Certificate.
//
// context must be a non-nil map (never an array); title, description and
// image must be strings; groupId must be a non-negative integer.
func ParseCertificate(obj map[string]any) (Certificate, error) {
	if obj == nil {
		return Certificate{}, failure.InvalidRecord("certificate is nil")
	}
	context, ok := obj["context"].(map[string]any)
	if !ok || context == nil {
		return Certificate{}, failure.InvalidRecord("context must be an object")
	}
	var strs [3]string
	for i, key := range []string{"title", "description", "image"} {
		s, ok := obj[key].(string)
		if !ok {
			return Certificate{}, failure.InvalidRecord("%s must be a string", key)
		}
		strs[i] = s
	}
	groupID, ok := toInteger(obj["groupId"])
	if !ok {
		return Certificate{}, failure.InvalidRecord("groupId must be an integer")
	}
	return NewCertificate(strs[0], strs[1], strs[2], groupID, context)
}

// IsCertificate reports whether obj is shaped like a certificate. It never
// fails; callers that go on to hash or store must use [ParseCertificate].
func IsCertificate(obj map[string]any) bool {
	_, err := ParseCertificate(obj)
	return err == nil
}

// ToMap returns the certificate as an untyped object.
// A missing group id is rendered as nil.
func (c Certificate) ToMap() map[string]any {
	var groupID any
	if c.GroupID != nil {
		groupID = new(big.Int).Set(c.GroupID)
	}
	return map[string]any{
		"title":       c.Title,
		"description": c.Description,
		"image":       c.Image,
		"groupId":     groupID,
		"context":     c.Context,
	}
}

// maxSafeFloat is the largest integer a float64 carries exactly.
const maxSafeFloat = 1 << 53

func toInteger(v any) (*big.Int, bool) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil || n.Sign() < 0 {
			return nil, false
		}
		return new(big.Int).Set(n), true
	case json.Number:
		i, ok := new(big.Int).SetString(string(n), 10)
		if !ok || i.Sign() < 0 {
			return nil, false
		}
		return i, true
	case float64:
		if n != math.Trunc(n) || n < 0 || n > maxSafeFloat {
			return nil, false
		}
		return big.NewInt(int64(n)), true
	case float32:
		return toInteger(float64(n))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() < 0 {
			return nil, false
		}
		return big.NewInt(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(rv.Uint()), true
	}
	return nil, false
}
