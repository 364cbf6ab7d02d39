// Package cmd implements the subcommands of the neutral command line.
//
// Each command is a kong command struct with a Run(context.Context) method.
// The context carries the parsed [kong.Context] (see [WithContext]) and the
// writer commands print to (see [WithOutput]), so commands can be driven
// from tests without a process.
package cmd

// Kong variables shared with package cli.
var (
	// CacheIdentifier names the variable holding the cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier names the variable holding the configuration file
	// path without extension.
	ConfigIdentifier = "config"
)
