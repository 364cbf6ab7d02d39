// Package pkg holds the identity of the neutral command: its name, version
// and the per-user directories it keeps files in.
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version returns the semantic version embedded at build time.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the command name. It also names the configuration and cache
	// directories.
	Name = "neutral"

	// Description is the one-line summary shown in help output.
	Description = "Render templates written in the Neutral BIF language"
)

// AuthorInfo identifies a maintainer.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the maintainers.
//
//nolint:gochecknoglobals
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
