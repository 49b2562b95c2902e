package config

import (
	"crypto/tls"
	"net/http/httptest"
	"testing"
)

func TestResolveBackendURL(t *testing.T) {
	tests := []struct {
		name       string
		backendURL string
		host       string
		tls        bool
		headers    map[string]string
		want       string
	}{
		{name: "configured wins", backendURL: "https://api.bingo.app", host: "localhost:8080", want: "https://api.bingo.app"},
		{name: "localhost", host: "localhost:8080", want: "http://localhost:5001"},
		{name: "localhost no port", host: "localhost", want: "http://localhost:5001"},
		{name: "loopback", host: "127.0.0.1:8080", want: "http://localhost:5001"},
		{name: "uppercase localhost", host: "LOCALHOST:3000", want: "http://localhost:5001"},
		{name: "lan ip uses origin", host: "192.168.1.20:8080", want: "http://192.168.1.20:8080"},
		{name: "public host", host: "bingo.example.com", want: "http://bingo.example.com"},
		{name: "tls origin", host: "bingo.example.com", tls: true, want: "https://bingo.example.com"},
		{
			name:    "behind proxy",
			host:    "127.0.0.1:8080",
			headers: map[string]string{"X-Forwarded-Host": "bingo.example.com", "X-Forwarded-Proto": "https"},
			want:    "https://bingo.example.com",
		},
		{
			name:    "proxy chain takes first",
			host:    "10.0.0.5",
			headers: map[string]string{"X-Forwarded-Host": "pub.example.com, inner", "X-Forwarded-Proto": "HTTPS, http"},
			want:    "https://pub.example.com",
		},
		{
			name:    "unknown proto ignored",
			host:    "bingo.example.com",
			headers: map[string]string{"X-Forwarded-Proto": "gopher"},
			want:    "http://bingo.example.com",
		},
		{
			name:    "unknown proto keeps tls",
			host:    "bingo.example.com",
			tls:     true,
			headers: map[string]string{"X-Forwarded-Proto": "javascript"},
			want:    "https://bingo.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.BackendURL = tt.backendURL

			r := httptest.NewRequest("GET", "/", nil)
			r.Host = tt.host
			if tt.tls {
				r.TLS = &tls.ConnectionState{}
			}
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			if got := cfg.ResolveBackendURL(r); got != tt.want {
				t.Errorf("ResolveBackendURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientSettings(t *testing.T) {
	cfg := Default()
	cfg.ElevenLabsAPIKey = "secret"
	cfg.Debug = true

	s := cfg.ClientSettings("http://backend")
	if s.APIURL != "http://backend" || s.BackendURL != "http://backend" {
		t.Errorf("URLs = %q/%q", s.APIURL, s.BackendURL)
	}
	if s.VoiceID != "21m00Tcm4TlvDq8ikWAM" {
		t.Errorf("VoiceID = %q", s.VoiceID)
	}
	if s.PreviewDurationMS != 5000 || s.AutoNextDelayMS != 15000 {
		t.Errorf("timings = %d/%d", s.PreviewDurationMS, s.AutoNextDelayMS)
	}
	if s.PoolFile != "../data/pool.json" || s.AnnouncementsFile != "../data/announcements.json" {
		t.Errorf("files = %q/%q", s.PoolFile, s.AnnouncementsFile)
	}
	if !s.DebugMode || s.ElevenLabsAPIKey != "secret" {
		t.Errorf("debug/key = %v/%q", s.DebugMode, s.ElevenLabsAPIKey)
	}
}
