package app

import "net/http"

// Config holds runtime wiring options for building the app.
type Config struct {
	HomeserverURL string       // homeserver base URL, e.g. https://matrix.example.org
	HTTP          *http.Client // optional; defaults to http.DefaultClient
}
