package value

import (
	"strconv"
	"strings"
)

// ArrayToken separates segments of a key.
const ArrayToken = "->"

// Pointer resolves a JSON pointer against v. The empty pointer yields v
// itself; any other pointer must begin with "/".
func (v *Value) Pointer(ptr string) (*Value, bool) {
	if ptr == "" {
		return v, v != nil
	}

	if ptr[0] != '/' {
		return nil, false
	}

	node := v
	for tok := range strings.SplitSeq(ptr[1:], "/") {
		tok = strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")

		switch node.Kind() {
		case KindObject:
			next, ok := node.fields[tok]
			if !ok {
				return nil, false
			}

			node = next

		case KindArray:
			i, ok := parseIndex(tok)
			if !ok || i >= len(node.items) {
				return nil, false
			}

			node = node.items[i]

		default:
			return nil, false
		}
	}

	return node, true
}

// parseIndex accepts a non-negative decimal with no sign and no leading zero.
func parseIndex(tok string) (int, bool) {
	if tok == "" || tok[0] == '+' || (tok[0] == '0' && len(tok) > 1) {
		return 0, false
	}

	i, err := strconv.Atoi(tok)
	if err != nil || i < 0 {
		return 0, false
	}

	return i, true
}

// KeyPointer converts a key to the JSON pointer it addresses.
func KeyPointer(key string) string {
	return "/" + strings.ReplaceAll(key, ArrayToken, "/")
}

// Lookup resolves key against v.
func (v *Value) Lookup(key string) (*Value, bool) {
	return v.Pointer(KeyPointer(key))
}

// Text returns the string at key, or the literal of the number at key.
// Anything else, including a missing key, yields the empty string.
func (v *Value) Text(key string) string {
	node, _ := v.Lookup(key)

	return node.Scalar()
}

// IsEmpty reports whether key is missing, null, or holds an empty string,
// object, or array. Numbers and bools are never empty.
func (v *Value) IsEmpty(key string) bool {
	node, ok := v.Lookup(key)
	if !ok {
		return true
	}

	switch node.Kind() {
	case KindNull:
		return true
	case KindString, KindObject, KindArray:
		return node.Len() == 0
	default:
		return false
	}
}

// IsTruthy reports whether key holds a true-ish value.
//
// Objects and arrays are true when non-empty. Strings are false when empty or
// "false", compared numerically when they parse as a number, and true
// otherwise. Numbers are true when greater than zero. Null and missing keys
// are false.
func (v *Value) IsTruthy(key string) bool {
	node, ok := v.Lookup(key)
	if !ok {
		return false
	}

	switch node.Kind() {
	case KindObject, KindArray:
		return node.Len() > 0

	case KindString:
		if node.text == "" || node.text == "false" {
			return false
		}

		if f, err := strconv.ParseFloat(node.text, 64); err == nil {
			return f > 0
		}

		return true

	case KindNumber:
		f, ok := node.Float()

		return ok && f > 0

	case KindBool:
		return node.truth

	default:
		return false
	}
}

// IsArray reports whether key holds an object or an array.
func (v *Value) IsArray(key string) bool {
	node, ok := v.Lookup(key)

	return ok && (node.Kind() == KindObject || node.Kind() == KindArray)
}

// IsDefined reports whether key is present and not null.
func (v *Value) IsDefined(key string) bool {
	node, ok := v.Lookup(key)

	return ok && !node.IsNull()
}

// At walks literal object field names from v and returns the node reached,
// or nil when any segment is missing.
func (v *Value) At(path ...string) *Value {
	node := v
	for _, name := range path {
		node = node.Field(name)
		if node == nil {
			return nil
		}
	}

	return node
}

// SetPath walks literal object field names from v, creating empty objects
// for missing or non-object segments, and returns the last node.
func (v *Value) SetPath(path ...string) *Value {
	node := v
	for _, name := range path {
		next := node.Field(name)
		if next == nil || next.Kind() != KindObject {
			next = Object()
			node.Set(name, next)
		}

		node = next
	}

	return node
}
