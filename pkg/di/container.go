// Package di provides dependency injection container
package di

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/ssargent/oxdash/pkg/api" //nolint:depguard
	"github.com/ssargent/oxdash/pkg/blobstore"
	"github.com/ssargent/oxdash/pkg/configsync"
	"github.com/ssargent/oxdash/pkg/events"
	"github.com/ssargent/oxdash/pkg/logging"
)

// BlobStoreOpener opens the settings store rooted at path
type BlobStoreOpener func(path string) (*blobstore.Store, error)

// Container holds all the dependencies for the application
type Container struct {
	serverFactory api.ServerFactory
	openBlobStore BlobStoreOpener

	gateOnce sync.Once
	gate     *configsync.Gate

	busOnce sync.Once
	bus     *events.Bus
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		serverFactory: api.NewServerFactory(),
		openBlobStore: blobstore.Open,
	}
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// OpenBlobStore opens the settings store rooted at path
func (c *Container) OpenBlobStore(path string) (*blobstore.Store, error) {
	return c.openBlobStore(path)
}

// SetBlobStoreOpener allows overriding how the settings store is opened (for testing)
func (c *Container) SetBlobStoreOpener(opener BlobStoreOpener) {
	c.openBlobStore = opener
}

// Gate returns the process-wide config gate. Every writer in the process
// must share it so the timestamp watermark holds across callers.
func (c *Container) Gate() *configsync.Gate {
	c.gateOnce.Do(func() {
		c.gate = configsync.NewGate(logging.Get("configsync"))
	})
	return c.gate
}

// Bus returns the process-wide event bus
func (c *Container) Bus() *events.Bus {
	c.busOnce.Do(func() {
		c.bus = events.NewBus(64)
	})
	return c.bus
}

// Logger returns a component logger
func (c *Container) Logger(component string) zerolog.Logger {
	return logging.Get(component)
}
