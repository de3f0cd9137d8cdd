package preview

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tordrt/schemadoc/internal/generator"
)

func get(t *testing.T, srv *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading %s body failed: %v", path, err)
	}
	return resp.StatusCode, string(body)
}

func newTestServer(t *testing.T, text string) *httptest.Server {
	t.Helper()
	h, _ := newTestHolder(t, text)
	s := NewServer(h, generator.DefaultConfig(), h.logger)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestServerHealth(t *testing.T) {
	srv := newTestServer(t, validSchema)

	status, body := get(t, srv, "/healthz")
	if status != http.StatusOK || !strings.Contains(body, "ok") {
		t.Errorf("healthz = %d %q", status, body)
	}
}

func TestServerIndex(t *testing.T) {
	srv := newTestServer(t, validSchema)

	status, body := get(t, srv, "/")
	if status != http.StatusOK {
		t.Fatalf("index status = %d", status)
	}
	for _, want := range []string{"<pre>", "User", "http-equiv=\"refresh\""} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q:\n%s", want, body)
		}
	}
}

func TestServerText(t *testing.T) {
	srv := newTestServer(t, validSchema)

	status, body := get(t, srv, "/schema.txt")
	if status != http.StatusOK {
		t.Fatalf("schema.txt status = %d", status)
	}
	if !strings.Contains(body, "=== DATABASE SCHEMA ===") || !strings.Contains(body, "User") {
		t.Errorf("schema.txt body:\n%s", body)
	}
}

func TestServerMarkdown(t *testing.T) {
	srv := newTestServer(t, validSchema)

	status, body := get(t, srv, "/schema.md")
	if status != http.StatusOK {
		t.Fatalf("schema.md status = %d", status)
	}
	if !strings.Contains(body, "# Database Schema") || !strings.Contains(body, "### User") {
		t.Errorf("schema.md body:\n%s", body)
	}
}

func TestServerDiagram(t *testing.T) {
	srv := newTestServer(t, validSchema)

	status, body := get(t, srv, "/diagram.svg")
	if status != http.StatusOK || !strings.HasPrefix(body, "<svg") {
		t.Errorf("diagram.svg = %d %q", status, body[:min(len(body), 40)])
	}
}

func TestServerStats(t *testing.T) {
	srv := newTestServer(t, validSchema)

	status, body := get(t, srv, "/stats")
	if status != http.StatusOK || !strings.Contains(body, "SCHEMA STATISTICS") {
		t.Errorf("stats = %d %q", status, body)
	}
}

func TestServerUnavailableWhenBroken(t *testing.T) {
	srv := newTestServer(t, "not a schema")

	for _, path := range []string{"/schema.txt", "/schema.md", "/diagram.svg", "/stats"} {
		status, _ := get(t, srv, path)
		if status != http.StatusServiceUnavailable {
			t.Errorf("GET %s = %d, want 503", path, status)
		}
	}

	// The index keeps serving so the browser shows the parse error.
	status, body := get(t, srv, "/")
	if status != http.StatusOK || !strings.Contains(body, "err") {
		t.Errorf("index on broken file = %d %q", status, body)
	}
}
