package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kevinwang15/tomledit"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestEditFilesInPlace(t *testing.T) {
	p := writeTemp(t, "a.toml", "# keep\n[server]\nport = 80\n")
	cfg := &MainConfig{}
	var out bytes.Buffer
	err := editFiles(cfg, EditConfig{InPlace: true}, &out, []string{p}, func(text string) (string, error) {
		return tomledit.Patch(text, "server.port", "8080")
	})
	if err != nil {
		t.Fatalf("editFiles: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("in-place edit wrote to output: %q", out.String())
	}
	got, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if want := "# keep\n[server]\nport = 8080\n"; string(got) != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	fi, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0600 {
		t.Fatalf("file mode changed to %v", fi.Mode().Perm())
	}
}

func TestEditFilesDiff(t *testing.T) {
	p := writeTemp(t, "a.toml", "a = 1\nb = 2\n")
	cfg := &MainConfig{ConfigFile: ""}
	var out bytes.Buffer
	err := editFiles(cfg, EditConfig{Diff: true}, &out, []string{p}, func(text string) (string, error) {
		return tomledit.Patch(text, "b", "$undefined")
	})
	if err != nil {
		t.Fatalf("editFiles: %v", err)
	}
	if !strings.Contains(out.String(), "-b = 2\n") {
		t.Fatalf("diff lacks removed line:\n%s", out.String())
	}
	got, _ := os.ReadFile(p)
	if string(got) != "a = 1\nb = 2\n" {
		t.Fatalf("diff mode modified the file: %q", got)
	}
}

func TestEditFilesReportsFile(t *testing.T) {
	p := writeTemp(t, "bad.toml", "a = \n")
	var out bytes.Buffer
	err := editFiles(&MainConfig{}, EditConfig{}, &out, []string{p}, tomledit.Normalize)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.HasPrefix(err.Error(), p+": ") {
		t.Fatalf("error does not name the file: %v", err)
	}
}

func TestApplyChanges(t *testing.T) {
	changes := writeTemp(t, "changes.yaml", "server:\n  port: 9000\nold: null\n")
	target := writeTemp(t, "app.toml", "old = true\n\n[server]\nhost = \"x\" # the host\n")
	p := tomledit.NewPatcher()
	if err := applyChanges(p, changes, target); err != nil {
		t.Fatalf("applyChanges: %v", err)
	}
	got, _ := os.ReadFile(target)
	want := "\n[server]\nhost = \"x\" # the host\nport = 9000\n"
	if string(got) != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestTomlItem(t *testing.T) {
	doc, err := tomledit.Parse([]byte("[a]\nb = 'x' # c\n"))
	if err != nil {
		t.Fatal(err)
	}
	out, err := tomlItem(doc, tomledit.Path{"a", "b"})
	if err != nil {
		t.Fatalf("tomlItem: %v", err)
	}
	if string(out) != "'x'\n" {
		t.Fatalf("got %q", out)
	}
	if _, err := tomlItem(doc, tomledit.Path{"a"}); err == nil {
		t.Fatal("expected an error for a table in toml format")
	}
	if _, err := tomlItem(doc, tomledit.Path{"zz"}); err == nil {
		t.Fatal("expected an error for a missing path")
	}
}
