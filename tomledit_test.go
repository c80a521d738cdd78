package tomledit

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/kevinwang15/tomledit/tomldoc"
)

func TestParseErrorsOnInvalidDocument(t *testing.T) {
	if _, err := Parse([]byte("[a]\nb = \n")); err == nil {
		t.Fatalf("expected error for a key without value, got nil")
	}
	if _, err := Parse([]byte("a = 1\na = 2\n")); err == nil {
		t.Fatalf("expected error for a duplicate key, got nil")
	}
}

func TestEmptyDataCreatesEmptyDoc(t *testing.T) {
	doc, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %q", out)
	}
	Set(doc, Path{"a", "b"}, Int(1))
	out, _ = Marshal(doc)
	if string(out) != "[a]\nb = 1\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEnsurePathConvertsValueToTable(t *testing.T) {
	doc, err := Parse([]byte("x = 1\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tbl := EnsurePath(doc, "x", "y")
	if tbl == nil || !tbl.IsImplicit() {
		t.Fatalf("EnsurePath did not produce an implicit table")
	}
	if _, ok := Resolve(doc, Path{"x"}).(*tomldoc.Table); !ok {
		t.Fatalf("x is not a table after EnsurePath")
	}
	tbl.Insert("z", tomldoc.NewBool(true))
	out, _ := Marshal(doc)
	if string(out) != "[x.y]\nz = true\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEnsurePathEntersLastArrayElement(t *testing.T) {
	doc, err := Parse([]byte("[[srv]]\nname = 'a'\n\n[[srv]]\nname = 'b'\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	EnsurePath(doc, "srv").Insert("port", tomldoc.NewInteger(80))
	out, _ := Marshal(doc)
	want := "[[srv]]\nname = 'a'\n\n[[srv]]\nname = 'b'\nport = 80\n"
	if string(out) != want {
		t.Fatalf("want %q, got %q", want, out)
	}
}

func TestGet(t *testing.T) {
	doc, err := Parse([]byte("[a]\nb = 1\nc = { d = 'x' }\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v, ok := Get(doc, Path{"a", "b"})
	if !ok || v != int64(1) {
		t.Fatalf("Get(a.b) = %v, %v", v, ok)
	}
	v, ok = Get(doc, Path{"a", "c", "d"})
	if !ok || v != "x" {
		t.Fatalf("Get(a.c.d) = %v, %v", v, ok)
	}
	if _, ok := Get(doc, Path{"a", "b", "c"}); ok {
		t.Fatalf("Get through a value should fail")
	}
}

func TestSetAndDelete(t *testing.T) {
	in := "# settings\n[svc]\nport = 8080 # http\nname = \"api\"\n"
	doc, err := Parse([]byte(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	Set(doc, Path{"svc", "port"}, Int(9090))
	Delete(doc, Path{"svc", "name"})
	Delete(doc, Path{"svc", "missing"})
	out, _ := Marshal(doc)
	want := "# settings\n[svc]\nport = 9090\n"
	if string(out) != want {
		t.Fatalf("want %q, got %q", want, out)
	}
}

func TestApplyInstruction(t *testing.T) {
	doc, _ := Parse([]byte("a = 1\n"))
	ins, err := Plan("a,b", "$undefined,yes")
	if err != nil {
		t.Fatal(err)
	}
	for _, in := range ins {
		Apply(doc, in)
	}
	out, _ := Marshal(doc)
	if string(out) != "b = \"yes\"\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestSingleLineDiffOnIntegerUpdate(t *testing.T) {
	in := `# header
[cfg]
a = 1
b = "x"
cors = '*'
c = 2
`
	out, err := Patch(in, "cfg.a", "10")
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if diff := countDifferentLines(in, out); diff != 1 {
		t.Fatalf("expected exactly 1 line to change, got %d\n%s", diff, unifiedDiff(in, out))
	}
	if !strings.Contains(out, "cors = '*'") {
		t.Fatalf("expected cors line to remain single-quoted; got:\n%s", out)
	}
}

func TestInsertNewKeyPreservesIndent(t *testing.T) {
	in := `[svc]
    name = "api"
    port = 8080
`
	out, err := Patch(in, "svc.timeout", "30")
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if getLineContaining(in, "name =") != getLineContaining(out, "name =") {
		t.Fatalf("unchanged line churned:\n%s", out)
	}
	if getLineContaining(out, "timeout") != "    timeout = 30" {
		t.Fatalf("expected 4-space indent for newly inserted key; got:\n%s", out)
	}
	if lineIndexContaining(out, "timeout") < lineIndexContaining(out, "port") {
		t.Fatalf("new key should be appended after existing ones:\n%s", out)
	}
}

func TestNewTableReusesDocumentIndent(t *testing.T) {
	in := "[a]\n  b = 1\n\n[c]\n  d = 2\n"
	out, err := Patch(in, "x.y,a.e.f", "1,2")
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	want := "[a]\n  b = 1\n  e.f = 2\n\n[c]\n  d = 2\n\n[x]\n  y = 1\n"
	if out != want {
		t.Fatalf("mismatch\n%s", unifiedDiff(want, out))
	}
}

func TestDetectIndent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a = 1\n", ""},
		{"[a]\nb = 1\n", ""},
		{"[a]\n  b = 1\n[c]\n  d = 1\n[e]\ne = 1\n", "  "},
		{"[a]\n\tb = 1\n", "\t"},
		{"[a]\n  b = 1\n[a.c]\n    d = 1\n", "  "},
		{"[a]\n    b = 1\n[a.c]\n        d = 1\n[a.c.e]\n            f = 1\n", "    "},
	}
	for _, tt := range tests {
		doc, err := tomldoc.Parse([]byte(tt.in))
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.in, err)
		}
		if got := detectIndent(doc); got != tt.want {
			t.Errorf("detectIndent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRootKeysAreNeverIndented(t *testing.T) {
	out, err := Patch("  a = 1\n\n[t]\n  b = 1\n", "c", "2")
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if getLineContaining(out, "c =") != "c = 2" {
		t.Fatalf("unexpected root insert:\n%s", out)
	}
}

func TestFinalNewlineMissing(t *testing.T) {
	out, err := Patch("[a]\nb = 1", "a.c", "2")
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if out != "[a]\nb = 1\nc = 2\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestConcurrentSetOnSameDocIsSafe(t *testing.T) {
	doc, err := Parse([]byte("[root]\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Set(doc, Path{"root", fmt.Sprintf("k%d", i)}, Int(int64(i)))
		}()
		go func() {
			defer wg.Done()
			if _, err := Marshal(doc); err != nil {
				t.Errorf("Marshal: %v", err)
			}
		}()
	}
	wg.Wait()
	out, _ := Marshal(doc)
	for i := range 50 {
		if !bytes.Contains(out, []byte(fmt.Sprintf("k%d = %d\n", i, i))) {
			t.Fatalf("missing k%d in:\n%s", i, out)
		}
	}
}

func TestPatcherLogsStrategies(t *testing.T) {
	var buf bytes.Buffer
	p := NewPatcher(WithLogger(newTestLogger(&buf)))
	if _, err := p.Patch("[a]\nb = 1\n", "a.b,a.c.d,e,a.b2", "2,3,4,$undefined"); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	logs := buf.String()
	for _, want := range []string{"strategy=overwrite", "strategy=dotted", "strategy=root", "strategy=noop"} {
		if !strings.Contains(logs, want) {
			t.Errorf("log lacks %q:\n%s", want, logs)
		}
	}
}

func TestLaxPatcherSkipsValidation(t *testing.T) {
	// Out of range dates pass the structural parse only.
	in := "d = 2021-13-45\n"
	if _, err := NewPatcher().Normalize(in); err == nil {
		t.Fatalf("strict patcher accepted %q", in)
	}
	out, err := NewPatcher(Strict(false)).Normalize(in)
	if err != nil {
		t.Fatalf("lax Normalize: %v", err)
	}
	if out != in {
		t.Fatalf("want %q, got %q", in, out)
	}
}

func newTestLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func unifiedDiff(before, after string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "before",
		ToFile:   "after",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

func diffStats(diff string) (adds, removes int) {
	for _, line := range strings.Split(diff, "\n") {
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case '+':
			if !strings.HasPrefix(line, "+++") {
				adds++
			}
		case '-':
			if !strings.HasPrefix(line, "---") {
				removes++
			}
		}
	}
	return
}

func getLineContaining(s, substr string) string {
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, substr) {
			return line
		}
	}
	return ""
}

func lineIndexContaining(s, substr string) int {
	for i, line := range strings.Split(s, "\n") {
		if strings.Contains(line, substr) {
			return i
		}
	}
	return -1
}

func countDifferentLines(a, b string) int {
	as := strings.Split(a, "\n")
	bs := strings.Split(b, "\n")
	n := max(len(as), len(bs))
	diff := 0
	for i := range n {
		var la, lb string
		if i < len(as) {
			la = as[i]
		}
		if i < len(bs) {
			lb = bs[i]
		}
		if la != lb {
			diff++
		}
	}
	return diff
}
