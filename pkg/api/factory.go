// Package api provides factory implementations for dependency injection
package api

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct {
	registerer prometheus.Registerer
}

// NewServerFactory creates a new server factory that registers metrics
// with the default Prometheus registerer
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// NewServerFactoryWithRegisterer creates a server factory that registers
// metrics with reg
func NewServerFactoryWithRegisterer(reg prometheus.Registerer) ServerFactory {
	return &DefaultServerFactory{registerer: reg}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{registerer: f.registerer}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct {
	registerer prometheus.Registerer
}

// StartServer serves the API until ctx is cancelled
func (s *DefaultServerStarter) StartServer(
	ctx context.Context,
	gate ConfigGate,
	blobs BlobStore,
	bus EventBus,
	config ServerConfig,
	logger zerolog.Logger,
) error {
	server := NewServer(gate, blobs, bus, config, NewMetrics(s.registerer), logger)
	return server.Run(ctx)
}
