// Package uistatic embeds the dashboard and serves it with a
// single-page fallback: any path that is not a real asset gets
// index.html so the client-side views survive a reload.
package uistatic

import (
	"embed"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed all:app
var appFS embed.FS

func Handler() http.Handler {
	sub, err := fs.Sub(appFS, "app")
	if err != nil {
		return http.NotFoundHandler()
	}
	assets := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean(strings.TrimPrefix(r.URL.Path, "/"))
		if name == "." || name == "" {
			serveApp(w, r, sub)
			return
		}

		if _, err := fs.Stat(sub, name); err == nil {
			assets.ServeHTTP(w, r)
			return
		}
		serveApp(w, r, sub)
	})
}

func serveApp(w http.ResponseWriter, r *http.Request, filesystem fs.FS) {
	page, err := filesystem.Open("index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer func() { _ = page.Close() }()
	// The dashboard is one self-contained page that calls /v1/*; a cached
	// stale copy would keep talking to endpoints that may have moved.
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.Copy(w, page)
}
