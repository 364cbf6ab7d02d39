package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/klauspost/readahead"
)

type (
	kongKey   struct{}
	outputKey struct{}
)

// WithContext returns ctx carrying the parsed command line.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, kongKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(kongKey{}).(*kong.Context)

	return ktx
}

// kongVar returns the kong variable name, or the empty string.
func kongVar(ctx context.Context, name string) string {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ""
	}

	return ktx.Model.Vars()[name]
}

// WithOutput returns ctx directing command output to w.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// outputFrom returns the writer set by [WithOutput], or standard output.
func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// stdinPath selects standard input wherever a file path is accepted.
const stdinPath = "-"

// stdin is replaced in tests.
var stdin io.Reader = os.Stdin

// readInput reads all of path, or standard input for [stdinPath]. Reads are
// overlapped with processing of earlier buffers by a read-ahead reader.
func readInput(path string) ([]byte, error) {
	var src io.Reader = stdin

	if path != stdinPath {
		f, err := os.Open(path)
		if err != nil {
			return nil, ErrReadInput.Wrap(err).With(slog.String("path", path))
		}
		defer f.Close()

		src = f
	}

	ra := readahead.NewReader(src)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("path", path))
	}

	return data, nil
}
