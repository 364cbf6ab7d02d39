package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/neutral/cli/cmd"
	"github.com/ardnew/neutral/log"
	"github.com/ardnew/neutral/pkg"
)

// TestMain points the per-user directories at a temporary home before any
// test resolves them.
func TestMain(m *testing.M) {
	home, err := os.MkdirTemp("", "neutral-cli-")
	if err != nil {
		panic(err)
	}

	for key, dir := range map[string]string{
		"HOME":            home,
		"XDG_CONFIG_HOME": filepath.Join(home, ".config"),
		"XDG_CACHE_HOME":  filepath.Join(home, ".cache"),
	} {
		if err := os.Setenv(key, dir); err != nil {
			panic(err)
		}
	}

	code := m.Run()

	_ = os.RemoveAll(home)

	os.Exit(code)
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	keepLogger(t)

	var buf bytes.Buffer

	err := Run(cmd.WithOutput(t.Context(), &buf), func(code int) {
		t.Errorf("exit(%d) called", code)
	}, args...)

	return buf.String(), err
}

func TestRun_Render(t *testing.T) {
	page := filepath.Join(t.TempDir(), "page.ntpl")
	if err := os.WriteFile(page, []byte("<p>{:;__test-nts:}</p>"), 0o600); err != nil {
		t.Fatal(err)
	}

	for name, args := range map[string][]string{
		"explicit": {"render", page},
		"default":  {page},
		"flags":    {"--log-level=error", "render", "--set", "__test-nts=flag", page},
	} {
		t.Run(name, func(t *testing.T) {
			out, err := runCLI(t, args...)
			if err != nil {
				t.Fatal(err)
			}

			want := "<p>nts</p>"
			if name == "flags" {
				want = "<p>flag</p>"
			}

			if out != want {
				t.Errorf("output = %q, want %q", out, want)
			}
		})
	}
}

func TestRun_ConfigFile(t *testing.T) {
	path := configPath(baseConfig + ".yaml")
	if err := os.MkdirAll(filepath.Dir(path), defaultDirMode); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("output: yaml\nlog:\n  level: error\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { _ = os.Remove(path) })

	page := filepath.Join(t.TempDir(), "page.ntpl")
	if err := os.WriteFile(page, []byte("{:;__test-nts:}"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "render", page)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out, "output: nts") {
		t.Errorf("output = %q, want a YAML result", out)
	}

	if l := log.Default(); l.Level() != log.LevelError {
		t.Errorf("log level = %v, want error from configuration", l.Level())
	}
}

func TestRun_Errors(t *testing.T) {
	page := filepath.Join(t.TempDir(), "page.ntpl")
	if err := os.WriteFile(page, []byte("{:;x:} :}"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, "blocks", page); !errors.Is(err, cmd.ErrUnmatched) {
		t.Errorf("blocks error = %v, want ErrUnmatched", err)
	}

	if _, err := runCLI(t, "--log-level=loud", "schema"); err == nil {
		t.Error("invalid log level accepted")
	}
}

func TestVersionString(t *testing.T) {
	v := versionString()

	if !strings.HasPrefix(v, pkg.Name+" "+pkg.Version()+" (") || !strings.Contains(v, pkg.Author[0].Email) {
		t.Errorf("versionString() = %q", v)
	}
}
