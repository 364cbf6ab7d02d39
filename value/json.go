package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
)

// ErrTrailingData is returned by [Parse] when input continues after the
// first JSON value.
var ErrTrailingData = errors.New("trailing data after JSON value")

// Parse decodes a single JSON document, keeping object keys in source order.
// Duplicate keys keep the position of their first occurrence and the value
// of their last.
func Parse(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decode(dec)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}

	return v, nil
}

// MustParse is like [Parse] but panics on error. It is meant for literals in
// tests and package initialization.
func MustParse(data string) *Value {
	v, err := Parse([]byte(data))
	if err != nil {
		panic(fmt.Sprintf("value: MustParse: %v", err))
	}

	return v
}

func decode(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := Object()

			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}

				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key: unexpected %v", kt)
				}

				val, err := decode(dec)
				if err != nil {
					return nil, err
				}

				obj.Set(key, val)
			}

			if _, err := dec.Token(); err != nil {
				return nil, err
			}

			return obj, nil

		case '[':
			arr := Array()

			for dec.More() {
				val, err := decode(dec)
				if err != nil {
					return nil, err
				}

				arr.Append(val)
			}

			if _, err := dec.Token(); err != nil {
				return nil, err
			}

			return arr, nil
		}

		return nil, fmt.Errorf("unexpected delimiter %v", t)

	case string:
		return String(t), nil

	case json.Number:
		return Number(string(t)), nil

	case bool:
		return Bool(t), nil

	case nil:
		return Null(), nil
	}

	return nil, fmt.Errorf("unexpected token %v", tok)
}

// UnmarshalJSON implements [json.Unmarshaler].
func (v *Value) UnmarshalJSON(data []byte) error {
	p, err := Parse(data)
	if err != nil {
		return err
	}

	*v = *p

	return nil
}

// MarshalJSON implements [json.Marshaler]. HTML characters are not escaped.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Indent returns the JSON encoding of v indented with the given prefix and
// indent strings.
func (v *Value) Indent(prefix, indent string) ([]byte, error) {
	compact, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, prefix, indent); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// String returns the compact JSON encoding of v.
func (v *Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return "<" + err.Error() + ">"
	}

	return string(b)
}

func (v *Value) encode(buf *bytes.Buffer) error {
	switch v.Kind() {
	case KindNull:
		buf.WriteString("null")

	case KindBool:
		if v.truth {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}

	case KindNumber:
		if !json.Valid([]byte(v.text)) {
			return fmt.Errorf("invalid number literal %q", v.text)
		}

		buf.WriteString(v.text)

	case KindString:
		return encodeString(buf, v.text)

	case KindObject:
		buf.WriteByte('{')

		for i, k := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := encodeString(buf, k); err != nil {
				return err
			}

			buf.WriteByte(':')

			if err := v.fields[k].encode(buf); err != nil {
				return err
			}
		}

		buf.WriteByte('}')

	case KindArray:
		buf.WriteByte('[')

		for i, it := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := it.encode(buf); err != nil {
				return err
			}
		}

		buf.WriteByte(']')
	}

	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(s); err != nil {
		return err
	}

	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)

	return nil
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
