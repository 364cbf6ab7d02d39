package cmd

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/neutral/log"
	"github.com/ardnew/neutral/profile"
)

// Init writes a configuration file holding the current global flag values.
type Init struct {
	Force  bool   `help:"Overwrite an existing configuration file." short:"f"`
	Format string `default:"yaml" enum:"yaml,json" help:"Configuration file format."`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) error {
	base := kongVar(ctx, ConfigIdentifier)
	if base == "" {
		return ErrWriteConfig.With(slog.String("reason", "no configuration path"))
	}

	path := base + "." + i.Format

	if _, err := os.Stat(path); err == nil && !i.Force {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(ErrFileExists)
	}

	b, err := i.encode(flagValues(kongContextFrom(ctx)))
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	if err := os.WriteFile(path, b, 0o600); err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	log.InfoContext(ctx, "configuration written", slog.String("file", path))

	return nil
}

func (i *Init) encode(values yaml.MapSlice) ([]byte, error) {
	if i.Format == "json" {
		m := make(map[string]any, len(values))
		for _, item := range values {
			m[item.Key.(string)] = item.Value
		}

		b, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, ErrMarshal.Wrap(err)
		}

		return append(b, '\n'), nil
	}

	b, err := yaml.Marshal(values)
	if err != nil {
		return nil, ErrMarshal.Wrap(err)
	}

	return b, nil
}

// flagValues returns the application-level flags with their current values,
// in declaration order. Help, version and profiling flags are left out, as
// are empty values.
func flagValues(ktx *kong.Context) yaml.MapSlice {
	if ktx == nil {
		return nil
	}

	var values yaml.MapSlice

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || flag.Name == "help" || flag.Name == "version" ||
			strings.HasPrefix(flag.Name, profile.Tag) {
			continue
		}

		v := ktx.FlagValue(flag)

		switch x := v.(type) {
		case nil:
			continue
		case string:
			if x == "" {
				continue
			}
		case []string:
			if len(x) == 0 {
				continue
			}
		case interface{ MarshalText() ([]byte, error) }:
			b, err := x.MarshalText()
			if err != nil {
				continue
			}

			v = string(b)
		}

		values = append(values, yaml.MapItem{Key: flag.Name, Value: v})
	}

	return values
}
