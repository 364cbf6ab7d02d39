// Package value implements the ordered JSON-like document tree shared by the
// template engine for configuration, user data, locale tables, and render
// bookkeeping.
//
// A [Value] is one of null, bool, number, string, object, or array. Objects
// remember insertion order, so iteration and serialization are stable and
// follow the order keys were first seen in the source document.
//
// # Keys
//
// The engine addresses values with keys such as
//
//	user->address->0->street
//
// where the two-character token "->" separates segments. A key is rewritten
// to a slash path and resolved like a JSON pointer (RFC 6901), so "~1" and
// "~0" escape "/" and "~" and array segments are decimal indices without
// leading zeros.
//
// Reads never fail: a missing segment simply yields no value, and the typed
// accessors ([Value.Text], [Value.IsEmpty], [Value.IsTruthy],
// [Value.IsArray], [Value.IsDefined]) map that case to their documented
// defaults.
//
// # Merging
//
// [Value.Merge] deep-merges another tree into the receiver: object keys merge
// recursively and any other pairing overwrites the destination with a copy of
// the source.
package value
