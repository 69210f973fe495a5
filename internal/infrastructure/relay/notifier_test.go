package relay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/colmeia/hive/internal/domain/service"
	"github.com/colmeia/hive/internal/infrastructure/config"
	"github.com/colmeia/hive/pkg/errors"
)

func testLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func enabledConfig() func() config.RelayConfig {
	return func() config.RelayConfig {
		return config.RelayConfig{BotToken: "tok", ChatID: "42", Enabled: true}
	}
}

func newTestNotifier(cfg func() config.RelayConfig, apiBase string) *Notifier {
	n := NewNotifier(cfg, testLogger())
	n.apiBase = apiBase
	return n
}

// === Disabled relay ===

func TestNotifier_DisabledSendsNothing(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	n := newTestNotifier(func() config.RelayConfig {
		return config.RelayConfig{BotToken: "tok", ChatID: "42", Enabled: false}
	}, server.URL)

	if n.Enabled() {
		t.Error("Enabled should be false")
	}
	if err := n.NotifyText(context.Background(), "hello"); err != nil {
		t.Errorf("disabled NotifyText should be a no-op, got %v", err)
	}
	if err := n.NotifyFiles(context.Background(), []service.File{{Name: "a.txt", Data: []byte("x")}}); err != nil {
		t.Errorf("disabled NotifyFiles should be a no-op, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("disabled relay issued %d HTTP calls", calls.Load())
	}
}

func TestNotifier_MissingCredentialsSendsNothing(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	n := newTestNotifier(func() config.RelayConfig {
		return config.RelayConfig{Enabled: true} // no token, no chat
	}, server.URL)

	if err := n.NotifyText(context.Background(), "hello"); err != nil {
		t.Errorf("unresolved credentials should no-op, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("relay without credentials issued %d HTTP calls", calls.Load())
	}
}

// === sendMessage ===

func TestNotifyText_RequestShape(t *testing.T) {
	var path string
	var body map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n := newTestNotifier(enabledConfig(), server.URL)
	if err := n.NotifyText(context.Background(), "Poeta: **olá**"); err != nil {
		t.Fatalf("NotifyText: %v", err)
	}

	if path != "/bottok/sendMessage" {
		t.Errorf("path: got %q", path)
	}
	if body["chat_id"] != "42" {
		t.Errorf("chat_id: got %q", body["chat_id"])
	}
	if body["parse_mode"] != "HTML" {
		t.Errorf("parse_mode: got %q", body["parse_mode"])
	}
	if !strings.HasPrefix(body["text"], "🤖 ") {
		t.Errorf("text should carry the bot marker, got %q", body["text"])
	}
	if !strings.Contains(body["text"], "<b>olá</b>") {
		t.Errorf("markdown should render to HTML, got %q", body["text"])
	}
}

func TestNotifyText_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer server.Close()

	n := newTestNotifier(enabledConfig(), server.URL)
	err := n.NotifyText(context.Background(), "hello")
	if !errors.IsTransport(err) {
		t.Fatalf("expected TRANSPORT_ERROR, got %v", err)
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("error should carry the body snippet, got %q", err.Error())
	}
}

// === sendDocument ===

func TestNotifyFiles_OneRequestPerFile(t *testing.T) {
	var paths []string
	var names []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if got := r.FormValue("chat_id"); got != "42" {
			t.Errorf("chat_id: got %q", got)
		}
		f, fh, err := r.FormFile("document")
		if err != nil {
			t.Errorf("document part: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if len(data) == 0 {
			t.Error("document part should carry data")
		}
		names = append(names, fh.Filename)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n := newTestNotifier(enabledConfig(), server.URL)
	files := []service.File{
		{Name: "a.txt", Data: []byte("first")},
		{Name: "b.md", Data: []byte("second")},
	}
	if err := n.NotifyFiles(context.Background(), files); err != nil {
		t.Fatalf("NotifyFiles: %v", err)
	}

	if len(paths) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(paths))
	}
	for _, p := range paths {
		if p != "/bottok/sendDocument" {
			t.Errorf("path: got %q", p)
		}
	}
	if names[0] != "a.txt" || names[1] != "b.md" {
		t.Errorf("file order: got %v", names)
	}
}

func TestNotifyFiles_FirstFailureStops(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	n := newTestNotifier(enabledConfig(), server.URL)
	files := []service.File{
		{Name: "a.txt", Data: []byte("x")},
		{Name: "b.txt", Data: []byte("y")},
	}
	if err := n.NotifyFiles(context.Background(), files); err == nil {
		t.Fatal("expected an error")
	}
	if calls.Load() != 1 {
		t.Errorf("remaining files should not be attempted, got %d calls", calls.Load())
	}
}
