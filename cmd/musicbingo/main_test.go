package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1di210299/Music-Bingo/internal/config"
)

func TestNginxConfig(t *testing.T) {
	cfg := config.Default()
	out := nginxConfig(cfg)
	if !strings.Contains(out, "location /bingo/ {") {
		t.Errorf("missing example location:\n%s", out)
	}
	if !strings.Contains(out, "proxy_pass         http://127.0.0.1:8080;") {
		t.Errorf("missing proxy_pass:\n%s", out)
	}

	cfg.BasePath = "/pubquiz"
	cfg.Port = 9000
	out = nginxConfig(cfg)
	if strings.Contains(out, "using \"/bingo\"") {
		t.Error("example note printed for explicit base path")
	}
	if !strings.Contains(out, "location /pubquiz/ {") || !strings.Contains(out, "127.0.0.1:9000") {
		t.Errorf("unexpected config:\n%s", out)
	}
}

func TestPidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "musicbingo.pid")

	if _, err := readPidFile(path); err == nil {
		t.Error("expected error for missing PID file")
	}

	if err := writePidFile(path, 4242); err != nil {
		t.Fatal(err)
	}
	pid, err := readPidFile(path)
	if err != nil || pid != 4242 {
		t.Errorf("readPidFile = %d, %v", pid, err)
	}

	for _, bad := range []string{"", "abc", "-3", "0"} {
		if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := readPidFile(path); err == nil {
			t.Errorf("readPidFile(%q) succeeded", bad)
		}
	}
}
