package cmd

import (
	"context"
	"log/slog"

	"github.com/goccy/go-yaml"
)

// Schema prints the schema a template would render against: the built-in
// defaults with any schema files and overrides merged over them.
type Schema struct {
	SchemaFlags `embed:""`

	Format string `default:"json" enum:"json,yaml" help:"Output format." short:"f"`
}

// Run executes the schema command.
func (s *Schema) Run(ctx context.Context) error {
	tp, err := s.newTemplate(ctx)
	if err != nil {
		return err
	}

	var b []byte

	switch s.Format {
	case "yaml":
		b, err = yaml.Marshal(tp.Schema())
	default:
		b, err = tp.Schema().Indent("", "  ")
		b = append(b, '\n')
	}

	if err != nil {
		return ErrMarshal.Wrap(err).With(slog.String("format", s.Format))
	}

	_, err = outputFrom(ctx).Write(b)

	return err
}
