package config

import (
	"net"
	"net/http"
	"strings"
)

// Hostnames that mean the game is being played on a developer machine.
var localHostnames = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
}

// ClientSettings is the flat settings object handed to browser code.
type ClientSettings struct {
	APIURL            string `json:"API_URL"`
	BackendURL        string `json:"BACKEND_URL"`
	ElevenLabsAPIKey  string `json:"ELEVENLABS_API_KEY"`
	VoiceID           string `json:"VOICE_ID"`
	PreviewDurationMS int    `json:"PREVIEW_DURATION_MS"`
	AutoNextDelayMS   int    `json:"AUTO_NEXT_DELAY_MS"`
	PoolFile          string `json:"POOL_FILE"`
	AnnouncementsFile string `json:"ANNOUNCEMENTS_FILE"`
	DebugMode         bool   `json:"DEBUG_MODE"`
}

// ResolveBackendURL picks the backend address for a request: the configured
// BackendURL if any, the local backend when the page is served from a local
// hostname, and the page's own origin otherwise.
func (c Config) ResolveBackendURL(r *http.Request) string {
	if c.BackendURL != "" {
		return c.BackendURL
	}
	host := RequestHost(r)
	if localHostnames[hostname(host)] {
		return c.LocalBackendURL
	}
	return RequestOrigin(r)
}

// ClientSettings returns the browser-facing settings for backendURL.
func (c Config) ClientSettings(backendURL string) ClientSettings {
	return ClientSettings{
		APIURL:            backendURL,
		BackendURL:        backendURL,
		ElevenLabsAPIKey:  c.ElevenLabsAPIKey,
		VoiceID:           c.VoiceID,
		PreviewDurationMS: c.PreviewDurationMS,
		AutoNextDelayMS:   c.AutoNextDelayMS,
		PoolFile:          c.PoolFile,
		AnnouncementsFile: c.AnnouncementsFile,
		DebugMode:         c.Debug,
	}
}

// RequestOrigin returns scheme://host as the browser sees it, honouring
// X-Forwarded-Proto and X-Forwarded-Host set by a reverse proxy.
func RequestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	switch p := strings.ToLower(firstHeaderValue(r, "X-Forwarded-Proto")); p {
	case "http", "https":
		scheme = p
	}
	return scheme + "://" + RequestHost(r)
}

// RequestHost returns the host (with port, if any) the client asked for.
func RequestHost(r *http.Request) string {
	if h := firstHeaderValue(r, "X-Forwarded-Host"); h != "" {
		return h
	}
	return r.Host
}

func firstHeaderValue(r *http.Request, key string) string {
	v := r.Header.Get(key)
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

// hostname strips the port and IPv6 brackets from host.
func hostname(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return strings.ToLower(h)
	}
	return strings.ToLower(strings.Trim(host, "[]"))
}
