// Package cli contains the command line interface for neutral.
//
// # Usage
//
//	neutral [flags] [render] [FILE]   render a template (the default command)
//	neutral blocks FILE               list the blocks of a template
//	neutral schema                    print the merged schema
//	neutral repl                      render templates interactively
//	neutral init                      write a configuration file
//
// Render, blocks, schema and repl share the schema flags:
//
//	-s, --schema=FILE   merge a JSON or YAML schema file (repeatable)
//	    --set=KEY=JSON  set a data key; nested keys use ->
//	-l, --lang=TAG      set the current language
//
// # Configuration
//
// Global flags may be stored in config.json or config.yaml under the user
// configuration directory. The init command writes one from the flags it is
// given. Command-line flags override configuration values.
//
// # Logging Options
//
//   - --log-level: minimum log level (trace, debug, info, warn, error)
//   - --log-format: record format (json, text)
//   - --log-time-layout: timestamp layout (RFC3339, DateTime, none, ...)
//   - --log-caller: include caller information
//   - --log-pretty: colorize records on a terminal
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o neutral .
//
//   - --pprof-mode: allocs, block, clock, cpu, goroutine, heap, mem, mutex,
//     thread or trace
//   - --pprof-dir: profile output directory (default: <cache dir>/pprof)
package cli
