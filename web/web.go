// Package web embarque la page de démonstration, le contrôleur de page (client.js)
// et l'agent de notifications (sw.js) servis par le backend.
package web

import (
	"bytes"
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"
)

//go:embed static
var staticFiles embed.FS

// ServiceWorkerScript est le chemin du script de l'agent de notifications
const ServiceWorkerScript = "/sw.js"

var buildTime = time.Now()

// Handler sert les fichiers statiques. "/" et "/index.html" renvoient la même page,
// sans redirection, pour que l'agent reconnaisse les deux URL.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}

		data, err := fs.ReadFile(staticFiles, "static/"+name)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		if "/"+name == ServiceWorkerScript {
			w.Header().Set("Service-Worker-Allowed", "/")
			w.Header().Set("Cache-Control", "no-cache")
		}

		http.ServeContent(w, r, name, buildTime, bytes.NewReader(data))
	})
}
