package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/1di210299/Music-Bingo/internal/config"
	"github.com/1di210299/Music-Bingo/internal/reload"
)

func testAssets() fstest.MapFS {
	return fstest.MapFS{
		"game.html":  {Data: []byte("<html><head><title>Bingo</title></head></html>")},
		"js/game.js": {Data: []byte("start();")},
	}
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.VoiceID = "voice-1"
	return cfg
}

func do(h http.Handler, method, target, host string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if host != "" {
		req.Host = host
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := NewRouter(testConfig(), testAssets(), nil)
	rec := do(h, "GET", "/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestIndexInjection(t *testing.T) {
	h := NewRouter(testConfig(), testAssets(), nil)

	tests := map[string]string{
		"localhost:8080":    "http://localhost:5001",
		"127.0.0.1":         "http://localhost:5001",
		"bingo.example.com": "http://bingo.example.com",
	}
	for host, want := range tests {
		rec := do(h, "GET", "/", host)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", host, rec.Code)
		}
		lit := "<head>\n<script>window.BACKEND_URL = \"" + want + "\";</script>"
		if !strings.Contains(rec.Body.String(), lit) {
			t.Errorf("%s: body = %s", host, rec.Body.String())
		}
	}
}

func TestConfiguredBackendURL(t *testing.T) {
	cfg := testConfig()
	cfg.BackendURL = "https://api.bingo.app"
	h := NewRouter(cfg, testAssets(), nil)

	rec := do(h, "GET", "/", "localhost:8080")
	if !strings.Contains(rec.Body.String(), `window.BACKEND_URL = "https://api.bingo.app";`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestClientConfigEndpoint(t *testing.T) {
	h := NewRouter(testConfig(), testAssets(), nil)

	rec := do(h, "GET", "/api/v1/config", "bingo.example.com")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var got config.ClientSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.BackendURL != "http://bingo.example.com" || got.APIURL != got.BackendURL {
		t.Errorf("urls = %q/%q", got.APIURL, got.BackendURL)
	}
	if got.VoiceID != "voice-1" || got.PreviewDurationMS != 5000 || got.AutoNextDelayMS != 15000 {
		t.Errorf("settings = %+v", got)
	}
}

func TestQRCode(t *testing.T) {
	h := NewRouter(testConfig(), testAssets(), nil)
	rec := do(h, "GET", "/qr", "bingo.example.com")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("body is not a PNG")
	}
}

func TestGameURL(t *testing.T) {
	cfg := testConfig()
	cfg.BasePath = "/bingo"
	a := &settingsAPI{cfg: cfg}

	req := httptest.NewRequest("GET", "/qr", nil)
	req.Host = "pub.example.com"
	req.Header.Set("X-Forwarded-Proto", "https")
	if got := a.gameURL(req); got != "https://pub.example.com/bingo/" {
		t.Errorf("gameURL = %q", got)
	}
}

func TestStaticAsset(t *testing.T) {
	h := NewRouter(testConfig(), testAssets(), nil)
	rec := do(h, "GET", "/js/game.js", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "start();" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestMissingPage(t *testing.T) {
	h := NewRouter(testConfig(), testAssets(), nil)
	if rec := do(h, "GET", "/nope.html", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
	if rec := do(h, "GET", "/", ""); rec.Code != http.StatusOK {
		t.Errorf("server stopped serving: %d", rec.Code)
	}
}

func TestBasePath(t *testing.T) {
	cfg := testConfig()
	cfg.BasePath = "/bingo"
	h := NewRouter(cfg, testAssets(), nil)

	for _, p := range []string{"/bingo", "/bingo/"} {
		rec := do(h, "GET", p, "bingo.example.com")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "window.BACKEND_URL") {
			t.Errorf("%s: got %d %s", p, rec.Code, rec.Body.String())
		}
	}
	if rec := do(h, "GET", "/bingo/js/game.js", ""); rec.Body.String() != "start();" {
		t.Errorf("asset under base path: %d %q", rec.Code, rec.Body.String())
	}
	if rec := do(h, "GET", "/bingo/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz under base path: %d", rec.Code)
	}
	for _, p := range []string{"/", "/game.html", "/js/game.js", "/bingox/", "/healthz"} {
		if rec := do(h, "GET", p, ""); rec.Code != http.StatusNotFound {
			t.Errorf("%s outside base path: status = %d, want 404", p, rec.Code)
		}
	}
}

func TestMethodsAndCORS(t *testing.T) {
	h := NewRouter(testConfig(), testAssets(), nil)

	rec := do(h, "OPTIONS", "/", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("OPTIONS status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}

	if rec := do(h, "POST", "/", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d", rec.Code)
	}
}

func TestLiveReloadOnlyWithHub(t *testing.T) {
	cfg := testConfig()
	cfg.BasePath = "/bingo"

	h := NewRouter(cfg, testAssets(), nil)
	if body := do(h, "GET", "/bingo/", "").Body.String(); strings.Contains(body, "WebSocket") {
		t.Error("live reload injected without hub")
	}

	h = NewRouter(cfg, testAssets(), reload.NewHub())
	body := do(h, "GET", "/bingo/", "").Body.String()
	if !strings.Contains(body, `"/bingo/api/v1/reload"`) {
		t.Errorf("live reload script missing: %s", body)
	}
}

func TestRecovery(t *testing.T) {
	h := withMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	if rec := do(h, "GET", "/", ""); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
}
