package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		method        string
		path          string
		handlerStatus int
		wantLevel     zapcore.Level
	}{
		{"GET request", "GET", "/api/v1/tasks", http.StatusOK, zapcore.InfoLevel},
		{"POST request", "POST", "/api/v1/tasks", http.StatusCreated, zapcore.InfoLevel},
		{"404 request", "GET", "/notfound", http.StatusNotFound, zapcore.InfoLevel},
		{"503 request", "GET", "/healthz", http.StatusServiceUnavailable, zapcore.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zap.DebugLevel)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
				_, _ = w.Write([]byte("body"))
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			RequestID(Logging(zap.New(core))(handler)).ServeHTTP(w, req)

			if w.Code != tt.handlerStatus {
				t.Errorf("Expected status %d, got %d", tt.handlerStatus, w.Code)
			}
			entries := logs.FilterMessage("http_request").All()
			if len(entries) != 1 {
				t.Fatalf("Expected one http_request entry, got %d", len(entries))
			}
			e := entries[0]
			if e.Level != tt.wantLevel {
				t.Errorf("Expected level %s, got %s", tt.wantLevel, e.Level)
			}
			fields := e.ContextMap()
			if fields["status_code"] != int64(tt.handlerStatus) {
				t.Errorf("Expected status_code %d, got %v", tt.handlerStatus, fields["status_code"])
			}
			if fields["path"] != tt.path {
				t.Errorf("Expected path %s, got %v", tt.path, fields["path"])
			}
			if fields["bytes"] != int64(4) {
				t.Errorf("Expected 4 bytes, got %v", fields["bytes"])
			}
			if fields["request_id"] == "" || fields["request_id"] == nil {
				t.Error("Expected request_id field")
			}
		})
	}
}

func TestLoggingResponseWriter_DefaultStatus(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("implicit 200"))
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	Logging(zap.New(core))(handler).ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected one entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["status_code"]; got != int64(http.StatusOK) {
		t.Errorf("Expected status_code 200, got %v", got)
	}
}
