package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ardnew/neutral/cli/cmd/repl"
	"github.com/ardnew/neutral/log"
	"github.com/ardnew/neutral/pkg"
)

// Repl starts an interactive session that renders each line typed against
// the schema built from the flags.
type Repl struct {
	SchemaFlags `embed:""`

	NoHistory bool `help:"Do not read or write the history file."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	tp, err := r.newTemplate(ctx)
	if err != nil {
		return err
	}

	return repl.Run(ctx, tp, r.historyPath(ctx), log.Default())
}

// historyPath returns the history file in the cache directory, or the empty
// string when history is disabled or the directory cannot be created.
func (r *Repl) historyPath(ctx context.Context) string {
	if r.NoHistory {
		return ""
	}

	dir := kongVar(ctx, CacheIdentifier)
	if dir == "" {
		dir = pkg.CacheDir()
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		log.WarnContext(ctx, "history disabled",
			slog.String("dir", dir),
			slog.String("error", err.Error()),
		)

		return ""
	}

	return filepath.Join(dir, repl.HistoryFile)
}
