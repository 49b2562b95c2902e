package web

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"path"
	"strings"
)

// Options configures StaticHandler.
type Options struct {
	// IndexFile is served (with injection) for "/".
	IndexFile string

	// BackendURL returns the backend address injected into a page served
	// for r.
	BackendURL func(r *http.Request) string

	// LiveReloadPath, when non-empty, injects a script that opens a
	// WebSocket to this path and reloads the page on a reload message.
	LiveReloadPath string
}

// StaticHandler serves the game assets from fsys. HTML pages get a
// window.BACKEND_URL script tag right after <head>; every other file is
// served verbatim.
func StaticHandler(fsys fs.FS, opts Options) http.Handler {
	fileServer := http.FileServerFS(filesOnly{fsys})
	if opts.IndexFile == "" {
		opts.IndexFile = "index.html"
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch p := r.URL.Path; {
		case p == "/":
			// root always maps to the index; failing to read it is a 500
			serveHTML(w, r, fsys, opts.IndexFile, http.StatusInternalServerError, opts)
		case strings.HasSuffix(strings.ToLower(p), ".html"):
			serveHTML(w, r, fsys, strings.TrimPrefix(path.Clean(p), "/"), http.StatusNotFound, opts)
		case strings.HasSuffix(p, "/"):
			serveHTML(w, r, fsys, strings.TrimPrefix(path.Clean(p), "/")+"/index.html", http.StatusNotFound, opts)
		default:
			fileServer.ServeHTTP(w, r)
		}
	})
}

func serveHTML(w http.ResponseWriter, r *http.Request, fsys fs.FS, name string, missingStatus int, opts Options) {
	if !fs.ValidPath(name) {
		http.NotFound(w, r)
		return
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		log.Printf("[web] error loading %s: %v", name, err)
		if errors.Is(err, fs.ErrNotExist) {
			http.Error(w, http.StatusText(missingStatus), missingStatus)
		} else {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	var backendURL string
	if opts.BackendURL != nil {
		backendURL = opts.BackendURL(r)
	}
	scripts := BackendScript(backendURL)
	if opts.LiveReloadPath != "" {
		scripts += "\n" + liveReloadScript(opts.LiveReloadPath)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write([]byte(Inject(string(data), scripts)))
}

// filesOnly hides directories from the file server so it never renders a
// listing. Directory index pages go through serveHTML instead.
type filesOnly struct{ fs.FS }

func (f filesOnly) Open(name string) (fs.File, error) {
	file, err := f.FS.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return file, nil
}

// Inject inserts snippet right after the first <head> in html. Pages without
// a <head> are returned unchanged.
func Inject(html, snippet string) string {
	return strings.Replace(html, "<head>", "<head>\n"+snippet, 1)
}

// BackendScript returns the script tag that publishes url as
// window.BACKEND_URL.
func BackendScript(url string) string {
	return "<script>window.BACKEND_URL = " + jsString(url) + ";</script>"
}

func liveReloadScript(wsPath string) string {
	return `<script>(function(){` +
		`var ws=new WebSocket((location.protocol==="https:"?"wss://":"ws://")+location.host+` + jsString(wsPath) + `);` +
		`ws.onmessage=function(e){try{if(JSON.parse(e.data).type==="reload")location.reload();}catch(_){}};` +
		`})();</script>`
}

// jsString quotes s as a JavaScript string literal. encoding/json escapes
// <, > and & so the result cannot close the surrounding script element.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
