package app

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("REDDIT_CLIENT_ID", "test-id")
	t.Setenv("REDDIT_CLIENT_SECRET", "test-secret")
	t.Setenv("REDDIT_USER_AGENT", "personabuilder-test/1.0")
	t.Setenv("GOOGLE_API_KEY", "test-api-key")
}

func TestInitSuccess(t *testing.T) {
	setRequiredEnv(t)

	var buf strings.Builder
	cfg, err := Init(&buf)
	if err != nil {
		t.Fatalf("Init returned unexpected error: %v", err)
	}
	if cfg.RedditClientID != "test-id" {
		t.Errorf("RedditClientID = %q", cfg.RedditClientID)
	}
}

func TestInitMissingEnv(t *testing.T) {
	t.Setenv("REDDIT_CLIENT_ID", "")
	t.Setenv("REDDIT_CLIENT_SECRET", "")
	t.Setenv("REDDIT_USER_AGENT", "")
	t.Setenv("GOOGLE_API_KEY", "")

	var buf strings.Builder
	_, err := Init(&buf)
	if err == nil {
		t.Fatal("Init should fail when required variables are missing")
	}
	if !strings.Contains(err.Error(), "GOOGLE_API_KEY") {
		t.Errorf("error should name missing variables: %v", err)
	}
}

func TestInitLogsAreJSON(t *testing.T) {
	setRequiredEnv(t)

	var buf strings.Builder
	if _, err := Init(&buf); err != nil {
		t.Fatalf("Init returned unexpected error: %v", err)
	}

	// Initの後に出るログはJSON構造化ログであること
	slog.Info("test message", slog.String("key", "value"))

	line := strings.SplitN(buf.String(), "\n", 2)[0]
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log output should be JSON: %v (%q)", err, line)
	}
	if entry["msg"] != "test message" {
		t.Errorf("msg = %v, want test message", entry["msg"])
	}
	if entry["service"] != "personabuilder" {
		t.Errorf("service = %v, want personabuilder", entry["service"])
	}
}

func TestRunHealthcheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	_, port, err := net.SplitHostPort(strings.TrimPrefix(srv.URL, "http://"))
	if err != nil {
		t.Fatalf("failed to extract port: %v", err)
	}

	if err := runHealthcheck(port); err != nil {
		t.Errorf("runHealthcheck returned unexpected error: %v", err)
	}
}

func TestRunHealthcheckFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, port, err := net.SplitHostPort(strings.TrimPrefix(srv.URL, "http://"))
	if err != nil {
		t.Fatalf("failed to extract port: %v", err)
	}

	if err := runHealthcheck(port); err == nil {
		t.Error("runHealthcheck should fail for a non-200 response")
	}
}
