package value

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/goccy/go-yaml"
)

// ParseYAML decodes a YAML document. Mappings keep their source order.
func ParseYAML(data []byte) (*Value, error) {
	var doc any
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, err
	}

	return FromNative(doc), nil
}

// MarshalYAML implements the goccy/go-yaml InterfaceMarshaler.
func (v *Value) MarshalYAML() (any, error) {
	return v.Native(), nil
}

// UnmarshalYAML implements the goccy/go-yaml BytesUnmarshaler.
func (v *Value) UnmarshalYAML(data []byte) error {
	p, err := ParseYAML(data)
	if err != nil {
		return err
	}

	*v = *p

	return nil
}

// Native converts v to plain Go values: nil, bool, int64 or float64, string,
// [yaml.MapSlice] for objects, and []any for arrays.
func (v *Value) Native() any {
	switch v.Kind() {
	case KindBool:
		return v.truth

	case KindNumber:
		if n, err := strconv.ParseInt(v.text, 10, 64); err == nil {
			return n
		}

		if f, err := strconv.ParseFloat(v.text, 64); err == nil {
			return f
		}

		return v.text

	case KindString:
		return v.text

	case KindObject:
		m := make(yaml.MapSlice, 0, len(v.keys))
		for _, k := range v.keys {
			m = append(m, yaml.MapItem{Key: k, Value: v.fields[k].Native()})
		}

		return m

	case KindArray:
		a := make([]any, len(v.items))
		for i, it := range v.items {
			a[i] = it.Native()
		}

		return a

	default:
		return nil
	}
}

// FromNative converts decoded Go values to a tree. Ordered maps keep their
// order; plain maps are sorted by key.
func FromNative(x any) *Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case *Value:
		if t == nil {
			return Null()
		}

		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case json.Number:
		return Number(string(t))
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return Number(strconv.FormatUint(uint64(t), 10))
	case uint8:
		return Number(strconv.FormatUint(uint64(t), 10))
	case uint16:
		return Number(strconv.FormatUint(uint64(t), 10))
	case uint32:
		return Number(strconv.FormatUint(uint64(t), 10))
	case uint64:
		return Number(strconv.FormatUint(t, 10))
	case float32:
		return fromFloat(float64(t))
	case float64:
		return fromFloat(t)
	case yaml.MapSlice:
		obj := Object()
		for _, it := range t {
			obj.Set(keyString(it.Key), FromNative(it.Value))
		}

		return obj
	case map[string]any:
		obj := Object()
		for _, k := range sortedKeys(t) {
			obj.Set(k, FromNative(t[k]))
		}

		return obj
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[keyString(k)] = e
		}

		return FromNative(m)
	case []any:
		arr := Array()
		for _, e := range t {
			arr.Append(FromNative(e))
		}

		return arr
	case []string:
		arr := Array()
		for _, e := range t {
			arr.Append(String(e))
		}

		return arr
	}

	return fromReflect(reflect.ValueOf(x))
}

// fromReflect handles slices and string-keyed maps of concrete element
// types; anything else becomes its fmt representation.
func fromReflect(rv reflect.Value) *Value {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		arr := Array()
		for i := range rv.Len() {
			arr.Append(FromNative(rv.Index(i).Interface()))
		}

		return arr

	case reflect.Map:
		m := make(map[string]any, rv.Len())
		for it := rv.MapRange(); it.Next(); {
			m[keyString(it.Key().Interface())] = it.Value().Interface()
		}

		return FromNative(m)

	case reflect.Pointer:
		if rv.IsNil() {
			return Null()
		}

		return FromNative(rv.Elem().Interface())
	}

	return String(fmt.Sprint(rv.Interface()))
}

func fromFloat(f float64) *Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}

	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return Number(strconv.FormatFloat(f, 'f', -1, 64))
	}

	return Number(strconv.FormatFloat(f, 'g', -1, 64))
}

func keyString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}

	return fmt.Sprint(k)
}
