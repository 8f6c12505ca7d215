package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// captureLogOutput redirects the global logger to a buffer for the
// duration of f.
func captureLogOutput(f func()) string {
	var buf bytes.Buffer
	oldLogger := defaultLogger
	defaultLogger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f()
	defaultLogger = oldLogger
	return buf.String()
}

func decodeLine(t *testing.T, out string) map[string]any {
	t.Helper()
	line := strings.TrimSpace(strings.Split(strings.TrimSpace(out), "\n")[0])
	var m map[string]any
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, line)
	}
	return m
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("text"); err != nil || f != FormatText {
		t.Errorf("ParseFormat(text) = %v, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(\"\") = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestInitLoggerTo(t *testing.T) {
	defer InitLogger(LevelInfo, FormatJSON)

	t.Run("level filters debug", func(t *testing.T) {
		var buf bytes.Buffer
		InitLoggerTo(&buf, LevelWarn, FormatJSON)
		Info("hidden")
		Warn("shown")
		if strings.Contains(buf.String(), "hidden") {
			t.Error("info message should be filtered at warn level")
		}
		if !strings.Contains(buf.String(), "shown") {
			t.Error("warn message missing")
		}
	})

	t.Run("timestamp is RFC3339", func(t *testing.T) {
		var buf bytes.Buffer
		InitLoggerTo(&buf, LevelInfo, FormatJSON)
		Info("stamp")
		m := decodeLine(t, buf.String())
		ts, _ := m["time"].(string)
		if _, err := time.Parse(time.RFC3339, ts); err != nil {
			t.Errorf("time %q is not RFC3339: %v", ts, err)
		}
	})

	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		InitLoggerTo(&buf, LevelInfo, FormatText)
		Info("plain", "k", "v")
		if !strings.Contains(buf.String(), "msg=plain") || !strings.Contains(buf.String(), "k=v") {
			t.Errorf("unexpected text output: %q", buf.String())
		}
	})
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if got := GetRequestID(ctx); got != "abc" {
		t.Errorf("GetRequestID() = %q, want %q", got, "abc")
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID(empty) = %q, want empty", got)
	}

	out := captureLogOutput(func() {
		InfoContext(ctx, "with id")
	})
	if m := decodeLine(t, out); m["request_id"] != "abc" {
		t.Errorf("request_id = %v, want abc", m["request_id"])
	}
}

func TestSearchExecuted(t *testing.T) {
	out := captureLogOutput(func() {
		SearchExecuted(context.Background(), "KJV", "db", 12, 30*time.Millisecond, "term", "love")
	})
	m := decodeLine(t, out)
	if m["msg"] != "search_executed" {
		t.Errorf("msg = %v", m["msg"])
	}
	if m["version"] != "KJV" || m["source"] != "db" || m["term"] != "love" {
		t.Errorf("unexpected fields: %v", m)
	}
	if m["results"] != float64(12) || m["duration_ms"] != float64(30) {
		t.Errorf("unexpected counts: %v", m)
	}
}

func TestMappingDropped(t *testing.T) {
	out := captureLogOutput(func() {
		MappingDropped(context.Background(), "bolls.life", "99")
	})
	m := decodeLine(t, out)
	if m["level"] != "WARN" || m["msg"] != "mapping_dropped" || m["book_ref"] != "99" {
		t.Errorf("unexpected entry: %v", m)
	}
}

func TestProviderFetch(t *testing.T) {
	t.Run("success logs at debug", func(t *testing.T) {
		out := captureLogOutput(func() {
			ProviderFetch(context.Background(), "helloao.org", "chapter", time.Second, nil)
		})
		if m := decodeLine(t, out); m["level"] != "DEBUG" {
			t.Errorf("level = %v, want DEBUG", m["level"])
		}
	})
	t.Run("failure logs at error", func(t *testing.T) {
		out := captureLogOutput(func() {
			ProviderFetch(context.Background(), "helloao.org", "chapter", time.Second, errors.New("timeout"))
		})
		m := decodeLine(t, out)
		if m["level"] != "ERROR" || m["error"] != "timeout" {
			t.Errorf("unexpected entry: %v", m)
		}
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if seen == "" {
			t.Fatal("request id not set in context")
		}
		if rec.Header().Get("X-Request-ID") != seen {
			t.Errorf("header = %q, context = %q", rec.Header().Get("X-Request-ID"), seen)
		}
	})

	t.Run("reuses incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "given")
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if seen != "given" {
			t.Errorf("request id = %q, want %q", seen, "given")
		}
	})

	t.Run("replaces oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", strings.Repeat("x", 200))
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if len(seen) != 36 {
			t.Errorf("request id = %q, want a generated uuid", seen)
		}
	})
}

func TestLoggingMiddlewareCapturesStatus(t *testing.T) {
	handler := CombinedMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	}))

	out := captureLogOutput(func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/search", nil))
	})
	m := decodeLine(t, out)
	if m["status_code"] != float64(http.StatusTeapot) {
		t.Errorf("status_code = %v, want %d", m["status_code"], http.StatusTeapot)
	}
	if m["path"] != "/api/search" {
		t.Errorf("path = %v", m["path"])
	}
	if m["request_id"] == nil {
		t.Error("request_id missing from http_request log")
	}
}
