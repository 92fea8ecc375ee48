package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"TosdrCollector/internal/config"
	"TosdrCollector/internal/infrastructure/tosdr"
)

const topicsYAML = `
bad:
  - Third-party cookies are used for advertising
good:
  - You can delete your content from this service
`

func testConfig(t *testing.T, baseURL string) config.Config {
	t.Helper()
	dir := t.TempDir()

	topicsPath := filepath.Join(dir, "topics.yaml")
	require.NoError(t, os.WriteFile(topicsPath, []byte(topicsYAML), 0o600))

	return config.Config{
		API:    config.APIConfig{BaseURL: baseURL, APIKey: "test-key"},
		Topics: config.TopicsConfig{Path: topicsPath},
		Output: config.OutputConfig{Path: filepath.Join(dir, "shared", "data", "tosdr.json")},
	}
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprint(w, body)
}

func TestApplicationRunWritesTable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/all-services/v1/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		writeJSON(w, `{"parameters":{"services":[{"id":1},{"id":"2"}]}}`)
	})
	mux.HandleFunc("/rest-service/v3/1.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"parameters":{
			"id": 1,
			"url": "https://www.example.com/about",
			"urls": ["example.net"],
			"rating": 16,
			"points": [
				{"status": "approved", "case_id": 10},
				{"status": "declined", "case_id": 11},
				{"status": "approved", "case_id": 12}
			]}}`)
	})
	mux.HandleFunc("/rest-service/v3/2.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/case/v1/10.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"parameters":{"id":10,"title":"Third-party cookies are used for advertising","classification":"bad","score":50}}`)
	})
	mux.HandleFunc("/case/v1/12.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"parameters":{"id":12,"title":"Some unrelated thing","classification":"good","score":10}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := testConfig(t, server.URL)
	application, err := New(cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer func() { require.NoError(t, application.Close()) }()

	require.NoError(t, application.Run(context.Background()))

	raw, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)

	var got map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))

	entry := map[string]any{
		"score": float64(50),
		"all": map[string]any{
			"bad":  []any{"third-party cookies are used for advertising"},
			"good": []any{"some unrelated thing"},
		},
		"match": map[string]any{
			"bad":  []any{"third-party cookies are used for advertising"},
			"good": []any{},
		},
		"class": "E",
	}
	want := map[string]map[string]any{
		"example.com": entry,
		"example.net": entry,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestApplicationRunRateLimitedListWritesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := testConfig(t, server.URL)
	application, err := New(cfg, nil)
	require.NoError(t, err)

	err = application.Run(context.Background())
	require.ErrorIs(t, err, tosdr.ErrRateLimited)

	_, statErr := os.Stat(cfg.Output.Path)
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestNewFailsWithoutTopics(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:0")
	cfg.Topics.Path = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := New(cfg, nil)
	require.Error(t, err)
}

func TestNewRejectsBadExportTable(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:0")
	cfg.Export.Postgres = config.PostgresConfig{DSN: "postgres://localhost/tosdr?sslmode=disable", Table: "bad table"}

	_, err := New(cfg, slog.New(slog.DiscardHandler))
	require.Error(t, err)
}
