package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/skip2/go-qrcode"

	"github.com/1di210299/Music-Bingo/internal/config"
)

const qrSize = 256

type settingsAPI struct {
	cfg config.Config
}

// get returns the browser-facing settings for the requesting host.
func (a *settingsAPI) get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, http.StatusOK, a.cfg.ClientSettings(a.cfg.ResolveBackendURL(r)))
}

// qr renders a QR code pointing players at the game.
func (a *settingsAPI) qr(w http.ResponseWriter, r *http.Request) {
	png, err := qrcode.Encode(a.gameURL(r), qrcode.Medium, qrSize)
	if err != nil {
		log.Printf("[http] qr encode: %v", err)
		http.Error(w, "failed to generate QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

// gameURL is the public address of the game page as seen by the client.
func (a *settingsAPI) gameURL(r *http.Request) string {
	return config.RequestOrigin(r) + withBasePath(a.cfg.BasePath, "/")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
