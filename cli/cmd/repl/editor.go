package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/neutral/log"
	"github.com/ardnew/neutral/value"
)

const defaultEditor = "vi"

// editSchemaCommand implements [tea.ExecCommand] for the edit-parse-retry
// loop over the template schema. The schema is written to a temp file as
// indented JSON, the user's editor is opened on it, and the result is
// parsed back. On a parse error the user is asked to re-edit; declining
// returns [ErrEditDeclined].
type editSchemaCommand struct {
	schema    *value.Value
	ctxFunc   func() context.Context
	logger    log.Logger
	newSchema *value.Value
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
}

func (c *editSchemaCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editSchemaCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editSchemaCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the loop. An emptied file cancels the edit and leaves
// newSchema nil.
func (c *editSchemaCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := c.schema.Indent("", "  ")
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}

	f, err := os.CreateTemp("", "neutral-schema-*.json")
	if err != nil {
		return err
	}

	path := f.Name()
	f.Close()

	defer os.Remove(path)

	for {
		if err := os.WriteFile(path, content, 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}

		schema, parseErr := parseSchema(data)
		c.logger.TraceContext(
			ctx,
			"editor parse attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", parseErr == nil),
		)

		if parseErr == nil {
			c.newSchema = schema

			return nil
		}

		fmt.Fprintf(c.stderr, "\nSchema error: %s\n", parseErr)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		if !confirm(c.stdin) {
			return ErrEditDeclined
		}

		content = data
	}
}

// parseSchema decodes a JSON schema that must be an object.
func parseSchema(data []byte) (*value.Value, error) {
	schema, err := value.Parse(data)
	if err != nil {
		return nil, err
	}

	if schema.Kind() != value.KindObject {
		return nil, fmt.Errorf("schema is %s, want object", schema.Kind())
	}

	return schema, nil
}

// confirm reads one answer from r. Anything but "n" or "no" is a yes; a
// closed reader is a no.
func confirm(r io.Reader) bool {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "n", "no":
		return false
	}

	return true
}

// runEditor opens $EDITOR (or vi) on path and waits for it to exit.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout, stderr io.Writer,
	path string,
) error {
	// EDITOR may carry arguments, as in "code --wait".
	args := strings.Fields(os.Getenv("EDITOR"))
	if len(args) == 0 {
		args = []string{defaultEditor}
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
