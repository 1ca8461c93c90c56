// Package handler contains the HTTP request handlers.
//
// WHAT IS A HANDLER?
// Anything that implements http.Handler:
//
//	type Handler interface {
//	    ServeHTTP(ResponseWriter, *Request)
//	}
//
// Most handlers here are methods with the http.HandlerFunc signature, grouped
// on a struct that holds their dependencies.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the incoming request (path params, body, caller identity)
//  2. Call the service layer
//  3. Write the response (status code, headers, JSON body)
//
// Business rules live in the service layer, not here.
package handler

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// SPAHandler serves a built single-page app from a directory.
//
// Files that exist are served as-is. Every other path gets index.html, so
// client-side routes like /kudos/42 survive a browser reload.
type SPAHandler struct {
	root  string
	index string
	files http.Handler
}

// NewSPAHandler returns a handler for the bundle in dir. dir must contain
// an index.html.
func NewSPAHandler(dir string) (*SPAHandler, error) {
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		return nil, fmt.Errorf("static dir %s: %w", dir, err)
	}
	return &SPAHandler{
		root:  dir,
		index: index,
		files: http.FileServer(http.Dir(dir)),
	}, nil
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// path.Clean on a rooted path never climbs above "/".
	p := path.Clean("/" + r.URL.Path)

	info, err := os.Stat(filepath.Join(h.root, filepath.FromSlash(p)))
	if err != nil || info.IsDir() {
		h.serveIndex(w, r)
		return
	}
	h.files.ServeHTTP(w, r)
}

// serveIndex writes index.html directly. http.ServeFile would reject the
// ".." paths we fall back on with a 400.
func (h *SPAHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(h.index)
	if err != nil {
		http.Error(w, "index unavailable", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "index unavailable", http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, "index.html", info.ModTime(), f)
}
