package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/neutral/log"
)

// resolve returns a [kong.ConfigurationLoader] for YAML configuration files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.yaml")
//
// Flags are looked up by their full name, with hyphens or underscores, or
// nested under their first name segment:
//
//	log-level: debug
//	log_format: json
//	log:
//	  pretty: false
//
// Command-line flags override configuration values. A file that does not
// decode is logged and ignored.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var values map[string]any

		if err := yaml.NewDecoder(r).Decode(&values); err != nil {
			if !errors.Is(err, io.EOF) {
				log.WarnContext(ctx, "ignoring configuration file",
					slog.String("error", err.Error()),
				)
			}

			return config{}, nil
		}

		return config(values), nil
	}
}

// config implements [kong.Resolver] over a decoded configuration file.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	v, ok := c.lookup(flag.Name)
	if !ok {
		return nil, nil
	}

	return flagValue(v), nil
}

func (c config) lookup(name string) (any, bool) {
	for _, key := range []string{name, strings.ReplaceAll(name, "-", "_")} {
		if v, ok := c[key]; ok {
			return v, true
		}
	}

	group, rest, ok := strings.Cut(name, "-")
	if !ok {
		return nil, false
	}

	sub, ok := c[group].(map[string]any)
	if !ok {
		return nil, false
	}

	return config(sub).lookup(rest)
}

// flagValue converts a decoded value to a form kong's mappers accept:
// numbers become strings and sequences keep their elements converted.
func flagValue(v any) any {
	switch x := v.(type) {
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = flagValue(e)
		}

		return out
	}

	return v
}
