package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
)

func TestResolve(t *testing.T) {
	src := `
log_level: debug
log-pretty: false
forks: 4
ratio: 0.5
plugin_dir: [/a, /b]
defaults:
  forks: 8
`

	res, err := resolve(strings.NewReader(src))
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}

	want := config{
		"log_level":  "debug",
		"log-pretty": false,
		"forks":      "4",
		"ratio":      "0.5",
		"plugin_dir": []any{"/a", "/b"},
	}

	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveLenient(t *testing.T) {
	for name, src := range map[string]string{
		"empty":   "",
		"invalid": "log_level: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			res, err := resolve(strings.NewReader(src))
			if err != nil {
				t.Fatalf("resolve() error = %v", err)
			}

			if diff := cmp.Diff(config{}, res); diff != "" {
				t.Errorf("resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigResolveNames(t *testing.T) {
	cfg := config{"log_level": "debug", "log-format": "json"}

	for name, want := range map[string]any{
		"log-level":  "debug",
		"log-format": "json",
		"log-caller": nil,
	} {
		got, err := cfg.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: name}})
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", name, err)
		}

		if got != want {
			t.Errorf("Resolve(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestResolveWithKong(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	err := os.WriteFile(path, []byte("log_level: debug\nforks: 4\n"), 0o600)
	if err != nil {
		t.Fatal(err)
	}

	var flags struct {
		LogLevel string `default:"info" name:"log-level"`
		Forks    int    `default:"1"`
		Other    string `default:"x"`
	}

	parser, err := kong.New(&flags, kong.Configuration(resolve, path))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"--forks", "2"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if flags.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", flags.LogLevel)
	}

	if flags.Forks != 2 {
		t.Errorf("Forks = %d, want 2 (command line overrides config)", flags.Forks)
	}

	if flags.Other != "x" {
		t.Errorf("Other = %q, want default x", flags.Other)
	}
}
