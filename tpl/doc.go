// Package tpl renders Neutral templates: text with embedded blocks delimited
// by "{:" and ":}", evaluated against a JSON schema.
//
// # Blocks
//
// A block has a name, optional modifiers, and a body:
//
//	{:name; body :}
//	{:name; params >> code :}
//	{:* comment *:}
//
// Blocks nest to any depth. The first top-level ">>" of a body separates
// params from code. Modifiers are written before the name:
//
//   - & filter: reserved; every block rejects it
//   - ! negate: invert the condition of the block
//   - ^ upline: remove the whitespace before the block output
//   - + scope: keep definitions made inside the block for its siblings
//
// Not every block accepts every modifier.
//
// # Schema
//
// The schema is a JSON object with these regions:
//
//	config   engine settings (comments, error.show, working_dir, ...)
//	inherit  snippets, declarations, locale, and params visible by scope
//	data     global variables, read with {:;name:} or {:;a->b:}
//
// [DefaultSchema] is merged under every schema a [Template] is given.
//
// # Rendering
//
//	t, err := tpl.New(tpl.WithSource("Hello {:;name:}!"))
//	if err != nil {
//		return err
//	}
//
//	_ = t.MergeSchemaJSON([]byte(`{"data":{"name":"World"}}`))
//	out := t.Render(ctx) // Hello World!
//
// Errors inside a block never stop a pass. The block prints nothing and the
// error is recorded, see [Template.Errors]. A pass stops early on exit or
// redirect blocks, on an unmatched delimiter, when ctx is canceled, or when
// it creates more blocks than config.infinite_loop_max_bifs allows. The
// outcome is reported by [Template.StatusCode]. Status codes from 400 to
// 599 replace the output with the status line.
//
// # Caching
//
// The spans of every source scanned are cached process-wide, keyed by a
// hash of the source. Use [WithCache] to opt out and [ClearCache] to reset.
package tpl
