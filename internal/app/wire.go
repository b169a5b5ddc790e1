package app

import (
	"net/http"

	"keybridge/internal/services/exchange"
	"keybridge/internal/transport"
)

// Wire bundles the transport client and exchange service for the CLI.
type Wire struct {
	Exchange *exchange.Service
	Client   *transport.Client
	HTTP     *http.Client
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) *Wire {
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	client := transport.NewClient(cfg.HomeserverURL)
	client.HTTP = httpClient

	return &Wire{
		Exchange: exchange.New(client),
		Client:   client,
		HTTP:     httpClient,
	}
}
