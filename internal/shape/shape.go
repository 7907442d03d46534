// Package shape maps internal records to the allow-listed objects that are
// sent to clients.
//
// A Shape is an ordered table of output fields, each with the function that
// reads its value from the record. Only declared fields are emitted, in the
// declared order, so internal fields never leave the process unless a shape
// names them.
package shape

import (
	"bytes"
	"encoding/json"
)

// Field is one output key and the accessor producing its value.
type Field[T any] struct {
	Name  string
	Value func(T) any
}

// Shape is an allow-list of output fields for records of type T.
type Shape[T any] []Field[T]

// Of builds a Shape from fields.
func Of[T any](fields ...Field[T]) Shape[T] {
	return Shape[T](fields)
}

// Apply returns exactly the declared fields of rec.
func (s Shape[T]) Apply(rec T) Object {
	obj := Object{keys: make([]string, 0, len(s)), values: make(map[string]any, len(s))}
	for _, f := range s {
		obj.set(f.Name, f.Value(rec))
	}
	return obj
}

// ApplyAll shapes every record. A nil input yields an empty list.
func (s Shape[T]) ApplyAll(recs []T) List {
	out := make(List, 0, len(recs))
	for _, rec := range recs {
		out = append(out, s.Apply(rec))
	}
	return out
}

// Names lists the declared output keys in order.
func (s Shape[T]) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Nested embeds a related record shaped by inner. A nil related record is emitted as null.
func Nested[T, U any](name string, get func(T) *U, inner Shape[*U]) Field[T] {
	return Field[T]{
		Name: name,
		Value: func(rec T) any {
			related := get(rec)
			if related == nil {
				return nil
			}
			return inner.Apply(related)
		},
	}
}

// Object is a shaped record. It marshals with keys in declaration order.
type Object struct {
	keys   []string
	values map[string]any
}

func (o *Object) set(key string, value any) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the emitted keys in order.
func (o Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// List is a shaped collection. It always marshals as a JSON array.
type List []Object

func (l List) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Object(l))
}
