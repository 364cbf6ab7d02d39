package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

var exeRewrite = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`^__debug_bin\d*(\.exe)?$`), Name}, // dlv build output
	{regexp.MustCompile(`^\.+`), ""},
}

// Prefix returns the name the per-user directories are kept under: the
// base name of the running executable without extension or leading dots.
// Debugger builds map back to [Name].
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(func() string {
	path := os.Args[0]
	if exe, err := os.Executable(); err == nil {
		path = exe
	}

	return prefixOf(path)
})

func prefixOf(path string) string {
	id := filepath.Base(path)

	for _, rw := range exeRewrite {
		id = rw.pattern.ReplaceAllString(id, rw.repl)
	}

	id = strings.TrimSuffix(id, filepath.Ext(id))

	if id == "" {
		return Name
	}

	return id
}

// userDir returns dir(), or the fallback under the home directory, or the
// working directory, joined with [Prefix].
func userDir(dir func() (string, error), fallback string) string {
	base, err := dir()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			base = filepath.Join(home, fallback)
		} else if wd, werr := os.Getwd(); werr == nil {
			base = wd
		} else {
			base = "."
		}
	}

	return filepath.Join(base, Prefix())
}

// ConfigDir returns the directory of the configuration file.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// CacheDir returns the directory of transient files such as REPL history.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})
