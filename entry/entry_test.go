package entry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/prun/pipeline"
	"github.com/ardnew/prun/pkg"
)

func TestRegistry_Resolve_Memoizes(t *testing.T) {
	r := NewRegistry()

	var calls int

	r.Register("ns", func() (*pipeline.Module, error) {
		calls++

		return &pipeline.Module{Doc: "ns"}, nil
	})

	m1, err := r.Resolve("ns")
	if err != nil {
		t.Fatal(err)
	}

	m2, err := r.Resolve("ns")
	if err != nil {
		t.Fatal(err)
	}

	if m1 != m2 {
		t.Error("Resolve returned different modules")
	}

	if calls != 1 {
		t.Errorf("loader called %d times", calls)
	}
}

func TestRegistry_Register_LastWins(t *testing.T) {
	r := NewRegistry()
	first := &pipeline.Module{Doc: "first"}
	second := &pipeline.Module{Doc: "second"}

	r.RegisterModule("ns", first)
	r.Register("ns", func() (*pipeline.Module, error) { return second, nil })

	if got, _ := r.Resolve("ns"); got != second {
		t.Errorf("expected last registration to win, got %q", got.Doc)
	}
}

func TestRegistry_Resolve_Errors(t *testing.T) {
	r := NewRegistry()
	r.RegisterModule("b", &pipeline.Module{})
	r.RegisterModule("a", &pipeline.Module{})

	boom := errors.New("boom")
	r.Register("bad", func() (*pipeline.Module, error) { return nil, boom })

	_, err := r.Resolve("zzz")

	var nsErr *NoSuchNamespaceError
	if !errors.As(err, &nsErr) {
		t.Fatalf("expected NoSuchNamespaceError, got %v", err)
	}

	if diff := cmp.Diff([]string{"a", "b", "bad"}, nsErr.Valid); diff != "" {
		t.Errorf("Valid mismatch (-want +got):\n%s", diff)
	}

	_, err = r.Resolve("bad")
	if !errors.Is(err, pkg.ErrLoadNamespace) || !errors.Is(err, boom) {
		t.Errorf("expected wrapped loader error, got %v", err)
	}

	if !r.Has("bad") || r.Has("zzz") {
		t.Error("Has reports wrong membership")
	}
}

func TestDiscover_Lazy(t *testing.T) {
	dir1, dir2 := t.TempDir(), t.TempDir()

	write := func(dir, name, body string) {
		t.Helper()

		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write(dir1, "lazy.yaml", "this: [is not: valid")
	write(dir1, "over.yml", "doc: first\n")
	write(dir2, "over.yaml", "doc: second\n")
	write(dir2, "notes.txt", "ignored")

	r := NewRegistry()

	found, err := Discover(r, dir1, filepath.Join(dir1, "missing"), dir2)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"lazy", "over"}, found); diff != "" {
		t.Errorf("Discover() mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"lazy", "over"}, r.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	if m, err := r.Resolve("over"); err != nil || m.Doc != "second" {
		t.Errorf("expected later directory to win, got %v, %v", m, err)
	}

	if _, err := r.Resolve("lazy"); !errors.Is(err, pkg.ErrManifest) {
		t.Errorf("expected manifest error on resolve, got %v", err)
	}
}
