package value

import (
	"iter"
	"slices"
	"strconv"
)

// Kind identifies the variant held by a [Value].
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a node of the document tree.
//
// The zero value and the nil pointer are both null. Numbers keep the decimal
// literal they were decoded from.
type Value struct {
	kind   Kind
	truth  bool
	text   string
	keys   []string
	fields map[string]*Value
	items  []*Value
}

// Null returns a new null value.
func Null() *Value { return &Value{} }

// Bool returns a new bool value.
func Bool(b bool) *Value { return &Value{kind: KindBool, truth: b} }

// Number returns a new number value holding the given decimal literal.
func Number(literal string) *Value { return &Value{kind: KindNumber, text: literal} }

// Int returns a new number value holding n.
func Int(n int64) *Value { return Number(strconv.FormatInt(n, 10)) }

// String returns a new string value.
func String(s string) *Value { return &Value{kind: KindString, text: s} }

// Object returns a new empty object.
func Object() *Value {
	return &Value{kind: KindObject, fields: map[string]*Value{}}
}

// Array returns a new array holding items.
func Array(items ...*Value) *Value {
	a := &Value{kind: KindArray, items: make([]*Value, 0, len(items))}
	for _, it := range items {
		a.Append(it)
	}

	return a
}

// Kind returns the variant held by v.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}

	return v.kind
}

// IsNull reports whether v is null.
func (v *Value) IsNull() bool { return v.Kind() == KindNull }

// Truth returns the payload of a bool value and false for anything else.
func (v *Value) Truth() bool { return v.Kind() == KindBool && v.truth }

// Scalar returns the text of a string or the literal of a number. Every other
// kind yields the empty string.
func (v *Value) Scalar() string {
	switch v.Kind() {
	case KindString, KindNumber:
		return v.text
	default:
		return ""
	}
}

// Float parses a number value as float64.
func (v *Value) Float() (float64, bool) {
	if v.Kind() != KindNumber {
		return 0, false
	}

	f, err := strconv.ParseFloat(v.text, 64)

	return f, err == nil
}

// Len returns the number of object fields, array items, or string bytes.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindObject:
		return len(v.keys)
	case KindArray:
		return len(v.items)
	case KindString:
		return len(v.text)
	default:
		return 0
	}
}

// Keys returns the object keys in insertion order.
func (v *Value) Keys() []string {
	if v.Kind() != KindObject {
		return nil
	}

	return slices.Clone(v.keys)
}

// Field returns the object field name, or nil if v is not an object or has
// no such field.
func (v *Value) Field(name string) *Value {
	if v.Kind() != KindObject {
		return nil
	}

	return v.fields[name]
}

// Index returns array item i, or nil when out of range.
func (v *Value) Index(i int) *Value {
	if v.Kind() != KindArray || i < 0 || i >= len(v.items) {
		return nil
	}

	return v.items[i]
}

// Set stores val under name and returns v. A receiver that is not an object
// is reset to an empty object first. A nil val stores null.
func (v *Value) Set(name string, val *Value) *Value {
	if val == nil {
		val = Null()
	}

	if v.kind != KindObject {
		*v = Value{kind: KindObject, fields: map[string]*Value{}}
	}

	if _, ok := v.fields[name]; !ok {
		v.keys = append(v.keys, name)
	}

	v.fields[name] = val

	return v
}

// Delete removes field name from an object.
func (v *Value) Delete(name string) {
	if v.Kind() != KindObject {
		return
	}

	if _, ok := v.fields[name]; !ok {
		return
	}

	delete(v.fields, name)
	v.keys = slices.DeleteFunc(v.keys, func(k string) bool { return k == name })
}

// Append adds val to the end of an array. A receiver that is not an array is
// reset to an empty array first.
func (v *Value) Append(val *Value) *Value {
	if val == nil {
		val = Null()
	}

	if v.kind != KindArray {
		*v = Value{kind: KindArray}
	}

	v.items = append(v.items, val)

	return v
}

// Entries iterates object fields in insertion order, or array items keyed by
// their decimal index.
func (v *Value) Entries() iter.Seq2[string, *Value] {
	return func(yield func(string, *Value) bool) {
		switch v.Kind() {
		case KindObject:
			for _, k := range v.keys {
				if !yield(k, v.fields[k]) {
					return
				}
			}

		case KindArray:
			for i, it := range v.items {
				if !yield(strconv.Itoa(i), it) {
					return
				}
			}
		}
	}
}

// Clone returns a deep copy of v.
func (v *Value) Clone() *Value {
	if v == nil {
		return Null()
	}

	c := &Value{kind: v.kind, truth: v.truth, text: v.text}

	switch v.kind {
	case KindObject:
		c.keys = slices.Clone(v.keys)
		c.fields = make(map[string]*Value, len(v.fields))

		for k, f := range v.fields {
			c.fields[k] = f.Clone()
		}

	case KindArray:
		c.items = make([]*Value, len(v.items))
		for i, it := range v.items {
			c.items[i] = it.Clone()
		}
	}

	return c
}

// Merge deep-merges src into v. Object keys merge recursively; any other
// pairing replaces v with a copy of src.
func (v *Value) Merge(src *Value) {
	if v == nil || src == nil {
		return
	}

	if v.kind == KindObject && src.kind == KindObject {
		for _, k := range src.keys {
			if dst, ok := v.fields[k]; ok {
				dst.Merge(src.fields[k])
			} else {
				v.Set(k, src.fields[k].Clone())
			}
		}

		return
	}

	*v = *src.Clone()
}

// Equal reports whether v and w hold the same tree. Object key order is not
// significant.
func (v *Value) Equal(w *Value) bool {
	if v.Kind() != w.Kind() {
		return false
	}

	switch v.Kind() {
	case KindNull:
		return true

	case KindBool:
		return v.truth == w.truth

	case KindNumber:
		if v.text == w.text {
			return true
		}

		a, aok := v.Float()
		b, bok := w.Float()

		return aok && bok && a == b

	case KindString:
		return v.text == w.text

	case KindObject:
		if len(v.keys) != len(w.keys) {
			return false
		}

		for k, f := range v.fields {
			if !f.Equal(w.fields[k]) {
				return false
			}
		}

		return true

	case KindArray:
		return slices.EqualFunc(v.items, w.items, (*Value).Equal)
	}

	return false
}
