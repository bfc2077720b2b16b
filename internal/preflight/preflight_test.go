package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marquee/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckReadableDirectory_Empty(t *testing.T) {
	result := CheckReadableDirectory("videos", "")
	if result.Passed || result.Detail != "not configured" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCheckDeckFile(t *testing.T) {
	dir := t.TempDir()

	if r := CheckDeckFile(""); !r.Passed {
		t.Fatalf("unset deck should pass: %+v", r)
	}
	if r := CheckDeckFile(filepath.Join(dir, "absent.yaml")); !r.Passed {
		t.Fatalf("missing deck should pass: %+v", r)
	}

	good := filepath.Join(dir, "deck.yaml")
	if err := os.WriteFile(good, []byte("slides:\n  - id: intro\n  - id: outro\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := CheckDeckFile(good)
	if !r.Passed || !strings.Contains(r.Detail, "2 slides") {
		t.Fatalf("good deck: %+v", r)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("slides: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckDeckFile(bad); r.Passed {
		t.Fatalf("malformed deck should fail: %+v", r)
	}
}

func TestCheckAdminPassword(t *testing.T) {
	if CheckAdminPassword("  ").Passed {
		t.Fatal("expected blank password to fail")
	}
	if !CheckAdminPassword("secret").Passed {
		t.Fatal("expected password to pass")
	}
}

func TestCheckDaemon_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","uptimeSeconds":90}`))
	}))
	defer srv.Close()

	result := CheckDaemon(context.Background(), srv.URL+"/")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "1m30s") {
		t.Fatalf("expected uptime in detail, got %q", result.Detail)
	}
}

func TestCheckDaemon_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if result := CheckDaemon(context.Background(), srv.URL); result.Passed {
		t.Fatal("expected failure for 500 response")
	}
}

func TestCheckDaemon_NotRunning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	result := CheckDaemon(context.Background(), url)
	if result.Passed {
		t.Fatal("expected failure for closed server")
	}
	if !strings.Contains(result.Detail, "unreachable") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDaemon_MissingURL(t *testing.T) {
	if result := CheckDaemon(context.Background(), " "); result.Passed {
		t.Fatal("expected failure for missing URL")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatalf("expected nil, got %v", results)
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Admin.Password = "pw"
	cfg.Paths.VideoDir = filepath.Join(base, "videos")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = ""
	cfg.Paths.DeckFile = ""
	if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
		t.Fatal(err)
	}

	results := RunAll(&cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d: %+v", len(results), results)
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Video directory" {
		t.Fatalf("expected only the missing video directory to fail, got %+v", failed)
	}
}
