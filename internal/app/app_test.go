package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewServerServesBootstrapKey(t *testing.T) {
	server, closer, err := NewServer(context.Background(), Config{
		Addr:            "127.0.0.1:0",
		DBPath:          filepath.Join(t.TempDir(), "app.sqlite"),
		BootstrapAPIKey: "boot-token",
		BootstrapEmail:  "boot@example.com",
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(func() {
		if err := closer.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"uri":"history","name":"History"}`))
	req.Header.Set("X-API-Key", "boot-token")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create realm: status %d body %s", rec.Code, rec.Body.String())
	}

	// the bootstrap key defaults to admin, so realm deletion is allowed
	req = httptest.NewRequest(http.MethodDelete, "/history/", nil)
	req.Header.Set("X-API-Key", "boot-token")
	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete realm: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestNewServerRejectsUnknownBootstrapRole(t *testing.T) {
	_, _, err := NewServer(context.Background(), Config{
		DBPath:          filepath.Join(t.TempDir(), "app.sqlite"),
		BootstrapAPIKey: "boot-token",
		BootstrapRole:   "owner",
	})
	if err == nil || !strings.Contains(err.Error(), `unknown role "owner"`) {
		t.Fatalf("expected role error, got %v", err)
	}
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }

func TestResourceCloserJoinsErrors(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")
	calls := 0
	rc := resourceCloser{closers: []io.Closer{
		closeFunc(func() error { calls++; return first }),
		nil,
		closeFunc(func() error { calls++; return second }),
	}}

	err := rc.Close()
	if calls != 2 {
		t.Fatalf("expected both closers to run, got %d", calls)
	}
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Fatalf("expected joined error, got %v", err)
	}
}
