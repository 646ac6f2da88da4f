package api

import (
	"github.com/ssargent/oxdash/pkg/configsync"
	"github.com/ssargent/oxdash/pkg/events"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ConfigWriteRequest is the body of POST /oxconfig. An empty DeployDir
// targets the server's configured deploy directory.
type ConfigWriteRequest struct {
	DeployDir string `json:"deploy_dir,omitempty"`
	Data      string `json:"data"`
	Timestamp uint64 `json:"timestamp"`
}

// ConfigWriteResponse reports the gate outcome for one write
type ConfigWriteResponse struct {
	Outcome   string `json:"outcome"`
	DeployDir string `json:"deploy_dir"`
	Timestamp uint64 `json:"timestamp"`
}

// ConfigStatusResponse describes the deploy target and the gate watermark
type ConfigStatusResponse struct {
	DeployDir     string `json:"deploy_dir"`
	LastTimestamp uint64 `json:"last_timestamp"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port        int
	Bind        string
	APIKey      string
	DeployDir   string
	MaxLogBytes int64

	// AllowedOrigins lists browser origins that may call the API besides
	// the server's own host. Empty allows none.
	AllowedOrigins []string
}

// ConfigGate is the monotonic config writer shared by every caller in the process
type ConfigGate interface {
	Write(dir string, payload []byte, timestamp uint64) configsync.Outcome
	Last() uint64
}

// BlobStore persists named settings blobs
type BlobStore interface {
	Save(name string, data []byte) error
	Load(name string) ([]byte, error)
	Delete(name string) error
	List() ([]string, error)
}

// EventBus publishes host events to subscribers
type EventBus interface {
	events.Emitter
	Subscribe() (<-chan events.Event, func())
}
