// Package fragment locates, parses and navigates JSON fragments embedded in
// otherwise free-form text such as HTML pages with inline scripts.
//
// Parsed values are represented by Node, a tagged variant with four kinds
// (absent, object, array, scalar). Callers switch on Node.Kind rather than
// type-asserting decoded interface values.
package fragment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind tags the variant held by a Node.
type Kind uint8

const (
	KindAbsent Kind = iota // missing key, JSON null or zero Node
	KindObject
	KindArray
	KindScalar // string, json.Number or bool
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindScalar:
		return "scalar"
	default:
		return "absent"
	}
}

// Node is an immutable JSON value. The zero Node is absent.
type Node struct {
	kind  Kind
	obj   map[string]Node
	arr   []Node
	value any
}

// Absent returns the absent Node.
func Absent() Node { return Node{} }

// Object wraps a key → Node mapping.
func Object(m map[string]Node) Node { return Node{kind: KindObject, obj: m} }

// Array wraps an ordered list of nodes.
func Array(items ...Node) Node { return Node{kind: KindArray, arr: items} }

// String returns a scalar string node.
func String(s string) Node { return Node{kind: KindScalar, value: s} }

// Number returns a scalar number node.
func Number(n json.Number) Node { return Node{kind: KindScalar, value: n} }

// Bool returns a scalar bool node.
func Bool(b bool) Node { return Node{kind: KindScalar, value: b} }

func (n Node) Kind() Kind { return n.kind }

func (n Node) IsAbsent() bool { return n.kind == KindAbsent }

func (n Node) IsArray() bool { return n.kind == KindArray }

func (n Node) IsObject() bool { return n.kind == KindObject }

// Len returns the number of array items; zero for other kinds.
func (n Node) Len() int { return len(n.arr) }

// Items returns the array items. The slice must not be modified.
func (n Node) Items() []Node { return n.arr }

// Index returns the i-th array item, or absent when out of range.
func (n Node) Index(i int) Node {
	if n.kind != KindArray || i < 0 || i >= len(n.arr) {
		return Node{}
	}
	return n.arr[i]
}

// Field returns the value stored under key, or absent when n is not an object
// or the key is missing.
func (n Node) Field(key string) Node {
	if n.kind != KindObject {
		return Node{}
	}
	return n.obj[key]
}

// Lookup descends through nested objects without fanning out over arrays.
func (n Node) Lookup(keys ...string) Node {
	cur := n
	for _, k := range keys {
		cur = cur.Field(k)
		if cur.kind == KindAbsent {
			return cur
		}
	}
	return cur
}

// Str returns the scalar string value, if n holds one.
func (n Node) Str() (string, bool) {
	if n.kind != KindScalar {
		return "", false
	}
	s, ok := n.value.(string)
	return s, ok
}

// Num returns the scalar number value, if n holds one.
func (n Node) Num() (json.Number, bool) {
	if n.kind != KindScalar {
		return "", false
	}
	num, ok := n.value.(json.Number)
	return num, ok
}

// Boolean returns the scalar bool value, if n holds one.
func (n Node) Boolean() (bool, bool) {
	if n.kind != KindScalar {
		return false, false
	}
	b, ok := n.value.(bool)
	return b, ok
}

// Equal reports deep equality of two nodes.
func (n Node) Equal(o Node) bool {
	if n.kind != o.kind {
		return false
	}
	switch n.kind {
	case KindObject:
		if len(n.obj) != len(o.obj) {
			return false
		}
		for k, v := range n.obj {
			ov, ok := o.obj[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return true
	case KindArray:
		if len(n.arr) != len(o.arr) {
			return false
		}
		for i := range n.arr {
			if !n.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindScalar:
		return n.value == o.value
	default:
		return true
	}
}

// MarshalJSON renders the node back to JSON. Absent renders as null.
func (n Node) MarshalJSON() ([]byte, error) {
	switch n.kind {
	case KindObject:
		return json.Marshal(n.obj)
	case KindArray:
		if n.arr == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(n.arr)
	case KindScalar:
		return json.Marshal(n.value)
	default:
		return []byte("null"), nil
	}
}

var errTrailingData = errors.New("trailing data after JSON value")

// Parse decodes exactly one JSON value. Numbers are kept as json.Number.
func Parse(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return Node{}, fmt.Errorf("decode fragment: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Node{}, errTrailingData
	}
	return fromValue(v), nil
}

// fromValue converts the output of encoding/json into a Node.
func fromValue(v any) Node {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]Node, len(t))
		for k, vv := range t {
			m[k] = fromValue(vv)
		}
		return Object(m)
	case []any:
		items := make([]Node, len(t))
		for i, vv := range t {
			items[i] = fromValue(vv)
		}
		return Array(items...)
	case string:
		return String(t)
	case json.Number:
		return Number(t)
	case bool:
		return Bool(t)
	default:
		return Node{}
	}
}
