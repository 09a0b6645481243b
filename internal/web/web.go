// ABOUTME: Embedded single-page chat UI served at the site root
// ABOUTME: One HTML file via go:embed, no build pipeline

// Package web serves the embedded chat page.
package web

import (
	_ "embed"
	"net/http"
)

//go:embed index.html
var indexHTML []byte

// Handler serves the chat page at "/" and nothing else. Every other path
// under the root pattern is a 404 so typos never silently render the page.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexHTML)
	})
}
