package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kevinwang15/tomledit/internal/config"
)

func newTestServer(t *testing.T, mod func(*config.Config)) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	if mod != nil {
		mod(cfg)
	}
	s := New(&Options{Config: cfg, Log: slog.New(slog.DiscardHandler)})
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, contentType, body string) (int, string) {
	t.Helper()
	resp, err := http.Post(url, contentType, strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(b)
}

func TestNormalizeRoundTrips(t *testing.T) {
	ts := newTestServer(t, nil)
	in := "# top\n[a]\nb = 1 # c\n"
	code, body := post(t, ts.URL+"/normalize", "application/toml", in)
	if code != http.StatusOK {
		t.Fatalf("status %d: %s", code, body)
	}
	if body != in {
		t.Fatalf("got %q, want %q", body, in)
	}
}

func TestNormalizeParseErrorIsPlainText(t *testing.T) {
	ts := newTestServer(t, nil)
	code, body := post(t, ts.URL+"/normalize", "application/toml", "invalid toml")
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", code)
	}
	if !strings.Contains(body, "failed to parse TOML") {
		t.Fatalf("unexpected error text %q", body)
	}
}

func TestPatchUsesQueryLists(t *testing.T) {
	ts := newTestServer(t, nil)
	code, body := post(t, ts.URL+"/patch?paths=a.d,a.b.c&values=2,x", "application/toml", "[a]\nd = 1\n")
	if code != http.StatusOK {
		t.Fatalf("status %d: %s", code, body)
	}
	want := "[a]\nd = 2\nb.c = \"x\"\n"
	if body != want {
		t.Fatalf("got %q, want %q", body, want)
	}
}

func TestPatchCountMismatch(t *testing.T) {
	ts := newTestServer(t, nil)
	code, body := post(t, ts.URL+"/patch?paths=a,b&values=1", "application/toml", "")
	if code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", code)
	}
	if !strings.Contains(body, "number of paths must match number of values") {
		t.Fatalf("unexpected error text %q", body)
	}
}

func TestJSONPatchEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	req, _ := json.Marshal(map[string]any{
		"document": "[svc]\nport = 8080\n",
		"patch":    json.RawMessage(`[{"op":"test","path":"/svc/port","value":8080},{"op":"replace","path":"/svc/port","value":9090}]`),
	})
	code, body := post(t, ts.URL+"/jsonpatch", "application/json", string(req))
	if code != http.StatusOK {
		t.Fatalf("status %d: %s", code, body)
	}
	if body != "[svc]\nport = 9090\n" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestJSONPatchFailedTestConflicts(t *testing.T) {
	ts := newTestServer(t, nil)
	req, _ := json.Marshal(map[string]any{
		"document": "[svc]\nport = 8080\n",
		"patch":    json.RawMessage(`[{"op":"test","path":"/svc/port","value":1}]`),
	})
	code, _ := post(t, ts.URL+"/jsonpatch", "application/json", string(req))
	if code != http.StatusConflict {
		t.Fatalf("status %d, want 409", code)
	}
}

func TestChangesEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	req, _ := json.Marshal(changesRequest{Before: "a = 1\n", After: "a = 2\n"})
	code, body := post(t, ts.URL+"/changes", "application/json", string(req))
	if code != http.StatusOK {
		t.Fatalf("status %d: %s", code, body)
	}
	var ops []map[string]any
	if err := json.Unmarshal([]byte(body), &ops); err != nil {
		t.Fatalf("decode: %v\n%s", err, body)
	}
	if len(ops) != 1 || ops[0]["op"] != "replace" || ops[0]["path"] != "/a" {
		t.Fatalf("unexpected operations %v", ops)
	}
}

func TestBodyLimit(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.Server.MaxBodyBytes = 8 })
	code, _ := post(t, ts.URL+"/normalize", "application/toml", "a = \"0123456789\"\n")
	if code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status %d, want 413", code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/patch")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status %d, want 405", resp.StatusCode)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	s := New(&Options{Log: slog.New(slog.DiscardHandler)})
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("healthz status %d", resp.StatusCode)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Serve returned %v", err)
	}
}
