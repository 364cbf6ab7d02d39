package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/neutral/tpl"
)

// Blocks lists the top-level blocks of a template.
type Blocks struct {
	Width int `default:"60" help:"Truncate block text to this many characters (0 for no limit)." short:"W"`

	File string `arg:"" default:"-" help:"Template file, or '-' for standard input." name:"file"`
}

// blockModifiers may prefix a block name.
const blockModifiers = "^!+&"

// blockName returns the kind of the block text, such as "include" or "var"
// for the unnamed variable block.
func blockName(text string) string {
	body := strings.TrimPrefix(text, "{:")

	if strings.HasPrefix(body, "*") {
		return "comment"
	}

	body = strings.TrimLeft(body, blockModifiers)

	end := strings.IndexAny(body, "; \t\r\n:")
	if end < 0 {
		end = len(body)
	}

	if end == 0 {
		return "var"
	}

	return body[:end]
}

// Run executes the blocks command.
func (b *Blocks) Run(ctx context.Context) error {
	data, err := readInput(b.File)
	if err != nil {
		return err
	}

	src := string(data)

	spans, err := tpl.Extract(src)
	if err != nil {
		var um *tpl.UnmatchedError
		if errors.As(err, &um) {
			return ErrUnmatched.Wrap(err).With(
				slog.String("file", b.File),
				slog.Int("offset", um.Offset),
			)
		}

		return err
	}

	return b.print(outputFrom(ctx), src, spans)
}

func (b *Blocks) print(w io.Writer, src string, spans []tpl.Span) error {
	r := lipgloss.NewRenderer(w)
	pos := r.NewStyle().Foreground(lipgloss.Color("8"))
	name := r.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).Width(10)
	faint := r.NewStyle().Faint(true)

	for _, sp := range spans {
		text := sp.In(src)
		kind := blockName(text)

		line := strings.Join(strings.Fields(text), " ")
		if b.Width > 0 && len([]rune(line)) > b.Width {
			line = string([]rune(line)[:b.Width-1]) + "…"
		}

		style := name
		if kind == "comment" {
			style = faint.Width(10)
		}

		_, err := fmt.Fprintf(w, "%s %s %s\n",
			pos.Render(fmt.Sprintf("%6d+%-5d", sp.Start, sp.Len())),
			style.Render(kind),
			line,
		)
		if err != nil {
			return err
		}
	}

	return nil
}
