package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"

	"github.com/gaiax/go-gxcert/core/failure"
	"github.com/ipld/go-ipld-prime/codec/dagjson"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"
)

// EncodeCertificate serializes a certificate as DAG-JSON. Map keys are
// sorted by the encoder, so equal certificates always produce equal bytes
// and therefore equal CIDs.
func EncodeCertificate(c Certificate) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if !c.GroupID.IsInt64() {
		return nil, failure.InvalidRecord("groupId %v does not fit a stored document", c.GroupID)
	}
	ctx, err := assembler(c.Context)
	if err != nil {
		return nil, err
	}
	n, err := qp.BuildMap(basicnode.Prototype.Any, 5, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "title", qp.String(c.Title))
		qp.MapEntry(ma, "description", qp.String(c.Description))
		qp.MapEntry(ma, "image", qp.String(c.Image))
		qp.MapEntry(ma, "groupId", qp.Int(c.GroupID.Int64()))
		qp.MapEntry(ma, "context", ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("building certificate node: %w", err)
	}
	var buf bytes.Buffer
	if err := dagjson.Encode(n, &buf); err != nil {
		return nil, fmt.Errorf("encoding certificate: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeCertificate parses stored bytes back into a certificate, applying
// the same validation as [ParseCertificate].
func DecodeCertificate(b []byte) (Certificate, error) {
	nb := basicnode.Prototype.Any.NewBuilder()
	if err := dagjson.Decode(nb, bytes.NewReader(b)); err != nil {
		return Certificate{}, failure.New(failure.InvalidRecordName, "the record is invalid: not DAG-JSON", err)
	}
	v, err := fromNode(nb.Build())
	if err != nil {
		return Certificate{}, failure.New(failure.InvalidRecordName, "the record is invalid", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return Certificate{}, failure.InvalidRecord("certificate must be an object")
	}
	return ParseCertificate(obj)
}

func checkContext(ctx map[string]any) error {
	_, err := assembler(ctx)
	return err
}

// assembler converts a free-form value to an IPLD assembler, failing for
// values that have no IPLD data model equivalent.
func assembler(v any) (qp.Assemble, error) {
	switch x := v.(type) {
	case nil:
		return qp.Null(), nil
	case string:
		return qp.String(x), nil
	case bool:
		return qp.Bool(x), nil
	case float32:
		return qp.Float(float64(x)), nil
	case float64:
		return qp.Float(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return qp.Int(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, failure.InvalidRecord("context number %q: %s", x, err)
		}
		return qp.Float(f), nil
	case *big.Int:
		if x == nil || !x.IsInt64() {
			return nil, failure.InvalidRecord("context integer %v overflows int64", x)
		}
		return qp.Int(x.Int64()), nil
	case []byte:
		return qp.Bytes(x), nil
	}
	return reflectAssembler(reflect.ValueOf(v))
}

// reflectAssembler covers the remaining numeric kinds and typed slices and
// maps, e.g. uint8, []int or map[string]int.
func reflectAssembler(rv reflect.Value) (qp.Assemble, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return qp.Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if rv.Uint() > math.MaxInt64 {
			return nil, failure.InvalidRecord("context integer %d overflows int64", rv.Uint())
		}
		return qp.Int(int64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return qp.Float(rv.Float()), nil
	case reflect.String:
		return qp.String(rv.String()), nil
	case reflect.Bool:
		return qp.Bool(rv.Bool()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return qp.Null(), nil
		}
		items := make([]qp.Assemble, rv.Len())
		for i := range items {
			a, err := assembler(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			items[i] = a
		}
		return qp.List(int64(len(items)), func(la datamodel.ListAssembler) {
			for _, a := range items {
				qp.ListEntry(la, a)
			}
		}), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, failure.InvalidRecord("context map keys must be strings, got %s", rv.Type().Key())
		}
		if rv.IsNil() {
			return qp.Null(), nil
		}
		entries := make(map[string]qp.Assemble, rv.Len())
		it := rv.MapRange()
		for it.Next() {
			a, err := assembler(it.Value().Interface())
			if err != nil {
				return nil, err
			}
			entries[it.Key().String()] = a
		}
		return qp.Map(int64(len(entries)), func(ma datamodel.MapAssembler) {
			for k, a := range entries {
				qp.MapEntry(ma, k, a)
			}
		}), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return qp.Null(), nil
		}
		return assembler(rv.Elem().Interface())
	}
	if !rv.IsValid() {
		return qp.Null(), nil
	}
	return nil, failure.InvalidRecord("unsupported context value of type %s", rv.Type())
}

func fromNode(n datamodel.Node) (any, error) {
	switch n.Kind() {
	case datamodel.Kind_Null:
		return nil, nil
	case datamodel.Kind_Bool:
		return n.AsBool()
	case datamodel.Kind_Int:
		return n.AsInt()
	case datamodel.Kind_Float:
		return n.AsFloat()
	case datamodel.Kind_String:
		return n.AsString()
	case datamodel.Kind_Bytes:
		return n.AsBytes()
	case datamodel.Kind_Link:
		l, err := n.AsLink()
		if err != nil {
			return nil, err
		}
		return l.String(), nil
	case datamodel.Kind_List:
		out := make([]any, 0, n.Length())
		it := n.ListIterator()
		for !it.Done() {
			_, item, err := it.Next()
			if err != nil {
				return nil, err
			}
			v, err := fromNode(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case datamodel.Kind_Map:
		out := make(map[string]any, n.Length())
		it := n.MapIterator()
		for !it.Done() {
			k, item, err := it.Next()
			if err != nil {
				return nil, err
			}
			key, err := k.AsString()
			if err != nil {
				return nil, err
			}
			v, err := fromNode(item)
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported node kind: %s", n.Kind())
}
