package cmd

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/language"

	"github.com/ardnew/neutral/log"
	"github.com/ardnew/neutral/tpl"
	"github.com/ardnew/neutral/value"
)

// SchemaFlags are the flags shared by commands that build a template.
type SchemaFlags struct {
	Schema  []string `help:"Schema file merged over the defaults, in order; YAML by .yaml/.yml extension, JSON otherwise." placeholder:"FILE"     short:"s" type:"existingfile"`
	Set     []string `help:"Set a data key to a JSON value; nested keys use ->. Non-JSON values are taken as strings."    placeholder:"KEY=JSON" sep:"none"`
	Lang    string   `help:"Language tag for trans blocks (BCP 47)."                                                     placeholder:"TAG"      short:"l"`
	NoCache bool     `help:"Disable the block extraction cache."`
}

// overlay returns the schema implied by --set and --lang.
func (f *SchemaFlags) overlay() (*value.Value, error) {
	over := value.Object()

	for _, kv := range f.Set {
		key, raw, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, ErrInvalidSet.With(slog.String("arg", kv))
		}

		v, err := value.Parse([]byte(raw))
		if err != nil {
			v = value.String(raw)
		}

		path := append([]string{"data"}, strings.Split(strings.TrimSpace(key), "->")...)
		over.SetPath(path[:len(path)-1]...).Set(path[len(path)-1], v)
	}

	if f.Lang != "" {
		tag, err := checkLang(f.Lang)
		if err != nil {
			return nil, err
		}

		over.SetPath("inherit", "locale").Set("current", value.String(tag))
	}

	return over, nil
}

// checkLang validates a BCP 47 tag and returns it as given, without
// surrounding space. The spelling is kept because locale keys such as
// "en-UK" are matched literally.
func checkLang(s string) (string, error) {
	s = strings.TrimSpace(s)

	if _, err := language.Parse(s); err != nil {
		return "", ErrInvalidLang.Wrap(err).With(slog.String("lang", s))
	}

	return s, nil
}

// newTemplate returns a template with every schema file and the flag
// overlay merged over the default schema, in that order.
func (f *SchemaFlags) newTemplate(ctx context.Context) (*tpl.Template, error) {
	tp, err := tpl.New(
		tpl.WithLogger(log.Default()),
		tpl.WithCache(!f.NoCache),
	)
	if err != nil {
		return nil, err
	}

	for _, path := range f.Schema {
		if err := tp.MergeSchemaFile(path); err != nil {
			return nil, ErrLoadSchema.Wrap(err)
		}

		log.DebugContext(ctx, "schema merged", slog.String("path", path))
	}

	over, err := f.overlay()
	if err != nil {
		return nil, err
	}

	if err := tp.MergeSchema(over); err != nil {
		return nil, ErrLoadSchema.Wrap(err)
	}

	return tp, nil
}

// loadSource sets the template source from path, or standard input.
func loadSource(tp *tpl.Template, path string) error {
	if path != stdinPath {
		return tp.SetFile(path)
	}

	data, err := readInput(path)
	if err != nil {
		return err
	}

	tp.SetSource(string(data))

	return nil
}
