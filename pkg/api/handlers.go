package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ssargent/oxdash/pkg/blobstore"
	"github.com/ssargent/oxdash/pkg/configsync"
	"github.com/ssargent/oxdash/pkg/datalog"
	"github.com/ssargent/oxdash/pkg/events"
	"github.com/ssargent/oxdash/pkg/timeseries"
)

// Server holds the API server state
type Server struct {
	gate    ConfigGate
	blobs   BlobStore
	bus     EventBus
	config  ServerConfig
	metrics *Metrics
	logger  zerolog.Logger
}

// NewServer creates a new API server. blobs and bus may be nil, in which
// case their routes answer 503.
func NewServer(gate ConfigGate, blobs BlobStore, bus EventBus, config ServerConfig, metrics *Metrics, logger zerolog.Logger) *Server {
	return &Server{
		gate:    gate,
		blobs:   blobs,
		bus:     bus,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// decodeBody decodes the request body as a telemetry log. It writes the
// error response itself and returns ok=false when decoding fails.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) (timeseries.Series, bool) {
	start := time.Now()

	body := io.Reader(r.Body)
	if s.config.MaxLogBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.config.MaxLogBytes)
	}

	reader, err := datalog.NewEncodingReader(body, r.Header.Get("Content-Encoding"))
	if err != nil {
		s.metrics.RecordDecode(false, 0, time.Since(start))
		sendError(w, fmt.Sprintf("Unsupported content encoding: %v", err), http.StatusUnsupportedMediaType)
		return nil, false
	}
	defer reader.Close()

	series, err := timeseries.Decode(reader)
	if err != nil {
		s.metrics.RecordDecode(false, 0, time.Since(start))

		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			sendError(w, fmt.Sprintf("Log exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
		case datalog.IsFormatError(err):
			s.logger.Debug().Err(err).Msg("rejected malformed log")
			sendError(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			sendError(w, fmt.Sprintf("Failed to read log: %v", err), http.StatusBadRequest)
		}
		return nil, false
	}

	samples := 0
	for _, points := range series {
		samples += len(points)
	}
	s.metrics.RecordDecode(true, samples, time.Since(start))
	return series, true
}

// handleDecodeLog godoc
//
//	@Summary		Decode a telemetry log
//	@Description	Decode a WPILOG file into a key -> timestamp -> value series. gzip and zstd bodies are accepted.
//	@Tags			logs
//	@Accept			octet-stream
//	@Produce		json,cbor
//	@Param			body				body		[]byte	true	"Log file"
//	@Param			Content-Encoding	header		string	false	"gzip, zstd or identity"
//	@Success		200					{object}	APIResponse
//	@Failure		413					{object}	APIResponse
//	@Failure		415					{object}	APIResponse
//	@Failure		422					{object}	APIResponse
//	@Router			/logs/decode [post]
//	@Security		ApiKeyAuth
func (s *Server) handleDecodeLog(w http.ResponseWriter, r *http.Request) {
	series, ok := s.decodeBody(w, r)
	if !ok {
		return
	}
	sendNegotiated(w, r, series)
}

// handleSummarizeLog godoc
//
//	@Summary		Summarize a telemetry log
//	@Description	Decode a WPILOG file and return per-key sample counts and time bounds
//	@Tags			logs
//	@Accept			octet-stream
//	@Produce		json,cbor
//	@Param			body	body		[]byte	true	"Log file"
//	@Success		200		{object}	APIResponse
//	@Failure		422		{object}	APIResponse
//	@Router			/logs/summary [post]
//	@Security		ApiKeyAuth
func (s *Server) handleSummarizeLog(w http.ResponseWriter, r *http.Request) {
	series, ok := s.decodeBody(w, r)
	if !ok {
		return
	}
	sendNegotiated(w, r, timeseries.Summarize(series))
}

// handleConfigStatus godoc
//
//	@Summary		Config gate status
//	@Description	Get the deploy directory and the timestamp of the last accepted config write
//	@Tags			config
//	@Produce		json
//	@Success		200	{object}	ConfigStatusResponse
//	@Router			/oxconfig [get]
//	@Security		ApiKeyAuth
func (s *Server) handleConfigStatus(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, ConfigStatusResponse{
		DeployDir:     s.config.DeployDir,
		LastTimestamp: s.gate.Last(),
	})
}

// handleWriteConfig godoc
//
//	@Summary		Write the deployed config
//	@Description	Replace config.json in the deploy directory if it exists and the timestamp is newer than the last accepted write
//	@Tags			config
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ConfigWriteRequest	true	"Config and timestamp"
//	@Success		200		{object}	ConfigWriteResponse
//	@Failure		400		{object}	APIResponse
//	@Failure		403		{object}	APIResponse
//	@Router			/oxconfig [post]
//	@Security		ApiKeyAuth
func (s *Server) handleWriteConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}
	s.writeConfig(w, req.DeployDir, []byte(req.Data), req.Timestamp)
}

// handleWriteConfigRaw godoc
//
//	@Summary		Write the deployed config from a stamped payload
//	@Description	Body is "<timestamp>,<config>"; the config is everything after the first comma
//	@Tags			config
//	@Accept			plain
//	@Produce		json
//	@Param			body		body		string	true	"Stamped config"
//	@Param			deploy_dir	query		string	false	"Deploy directory inside the server's (defaults to the server's)"
//	@Success		200		{object}	ConfigWriteResponse
//	@Failure		400		{object}	APIResponse
//	@Failure		403		{object}	APIResponse
//	@Router			/oxconfig/raw [post]
//	@Security		ApiKeyAuth
func (s *Server) handleWriteConfigRaw(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	timestamp, payload, err := configsync.ParseStamped(string(raw))
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeConfig(w, r.URL.Query().Get("deploy_dir"), payload, timestamp)
}

// errDeployDirOutside is returned for a deploy_dir override that does not
// resolve inside the configured deploy directory.
var errDeployDirOutside = errors.New("deploy_dir must be inside the configured deploy directory")

// resolveDeployDir returns the gate target for a request. An empty request
// targets the configured directory; an override must be that directory or
// a subdirectory of it.
func (s *Server) resolveDeployDir(requested string) (string, error) {
	if requested == "" {
		return s.config.DeployDir, nil
	}
	if s.config.DeployDir == "" {
		return "", errDeployDirOutside
	}
	root, err := filepath.Abs(s.config.DeployDir)
	if err != nil {
		return "", err
	}
	target := requested
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	target = filepath.Clean(target)
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errDeployDirOutside
	}
	return target, nil
}

// writeConfig runs one gate write. Every gate outcome is a 200; the outcome
// string carries the result.
func (s *Server) writeConfig(w http.ResponseWriter, requested string, payload []byte, timestamp uint64) {
	deployDir, err := s.resolveDeployDir(requested)
	if err != nil {
		s.logger.Warn().Str("deploy_dir", requested).Msg("rejected config write outside the deploy directory")
		sendError(w, errDeployDirOutside.Error(), http.StatusForbidden)
		return
	}
	outcome := s.gate.Write(deployDir, payload, timestamp)
	s.metrics.RecordConfigWrite(outcome.String(), s.gate.Last())
	sendSuccess(w, ConfigWriteResponse{
		Outcome:   outcome.String(),
		DeployDir: deployDir,
		Timestamp: timestamp,
	})
}

// handleListBlobs godoc
//
//	@Summary		List stored blobs
//	@Tags			store
//	@Produce		json
//	@Success		200	{object}	APIResponse
//	@Failure		503	{object}	APIResponse
//	@Router			/store [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListBlobs(w http.ResponseWriter, r *http.Request) {
	if s.blobs == nil {
		sendError(w, "Store is not available", http.StatusServiceUnavailable)
		return
	}
	names, err := s.blobs.List()
	s.metrics.RecordStoreOperation("list", err == nil)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list blobs: %v", err), http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	sendSuccess(w, names)
}

// handleSaveBlob godoc
//
//	@Summary		Save a named blob
//	@Description	Store settings or layout data under a name, replacing any previous value
//	@Tags			store
//	@Accept			octet-stream,json
//	@Produce		json
//	@Param			name	path		string	true	"Blob name"
//	@Param			body	body		[]byte	true	"Data"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	APIResponse
//	@Router			/store/{name} [put]
//	@Security		ApiKeyAuth
func (s *Server) handleSaveBlob(w http.ResponseWriter, r *http.Request) {
	if s.blobs == nil {
		sendError(w, "Store is not available", http.StatusServiceUnavailable)
		return
	}
	name := chi.URLParam(r, "name")

	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.metrics.RecordStoreOperation("save", false)
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	if err := s.blobs.Save(name, data); err != nil {
		s.metrics.RecordStoreOperation("save", false)
		if errors.Is(err, blobstore.ErrInvalidName) {
			sendError(w, "Name is required", http.StatusBadRequest)
			return
		}
		sendError(w, fmt.Sprintf("Failed to save blob: %v", err), http.StatusInternalServerError)
		return
	}

	s.metrics.RecordStoreOperation("save", true)
	sendSuccess(w, map[string]string{"message": "Blob stored successfully"})
}

// handleLoadBlob godoc
//
//	@Summary		Load a named blob
//	@Tags			store
//	@Produce		octet-stream
//	@Param			name	path		string	true	"Blob name"
//	@Success		200		{string}	byte
//	@Failure		404		{object}	APIResponse
//	@Router			/store/{name} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleLoadBlob(w http.ResponseWriter, r *http.Request) {
	if s.blobs == nil {
		sendError(w, "Store is not available", http.StatusServiceUnavailable)
		return
	}
	name := chi.URLParam(r, "name")

	data, err := s.blobs.Load(name)
	if err != nil {
		s.metrics.RecordStoreOperation("load", false)
		switch {
		case errors.Is(err, blobstore.ErrNotFound):
			sendError(w, "Blob not found", http.StatusNotFound)
		case errors.Is(err, blobstore.ErrInvalidName):
			sendError(w, "Name is required", http.StatusBadRequest)
		default:
			sendError(w, fmt.Sprintf("Failed to load blob: %v", err), http.StatusInternalServerError)
		}
		return
	}

	s.metrics.RecordStoreOperation("load", true)
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}

// handleDeleteBlob godoc
//
//	@Summary		Delete a named blob
//	@Tags			store
//	@Produce		json
//	@Param			name	path		string	true	"Blob name"
//	@Success		200		{object}	map[string]string
//	@Router			/store/{name} [delete]
//	@Security		ApiKeyAuth
func (s *Server) handleDeleteBlob(w http.ResponseWriter, r *http.Request) {
	if s.blobs == nil {
		sendError(w, "Store is not available", http.StatusServiceUnavailable)
		return
	}
	if err := s.blobs.Delete(chi.URLParam(r, "name")); err != nil {
		s.metrics.RecordStoreOperation("delete", false)
		sendError(w, fmt.Sprintf("Failed to delete blob: %v", err), http.StatusInternalServerError)
		return
	}
	s.metrics.RecordStoreOperation("delete", true)
	sendSuccess(w, map[string]string{"message": "Blob deleted successfully"})
}

// handleEmitEvent godoc
//
//	@Summary		Emit a host event
//	@Description	Publish a named event (connect, open_log, import_config, export_config) to subscribers
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string	true	"Event name"
//	@Param			body	body		object	false	"Payload"
//	@Success		200		{object}	events.Event
//	@Failure		400		{object}	APIResponse
//	@Router			/events/{name} [post]
//	@Security		ApiKeyAuth
func (s *Server) handleEmitEvent(w http.ResponseWriter, r *http.Request) {
	if s.bus == nil {
		sendError(w, "Events are not available", http.StatusServiceUnavailable)
		return
	}
	name := chi.URLParam(r, "name")
	if !events.IsKnown(name) {
		sendError(w, fmt.Sprintf("Unknown event %q", name), http.StatusBadRequest)
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var payload json.RawMessage
	if len(raw) > 0 {
		if !json.Valid(raw) {
			sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
			return
		}
		payload = raw
	}

	sendSuccess(w, s.bus.Emit(name, payload))
}

// handleEventStream godoc
//
//	@Summary		Stream host events
//	@Description	Server-sent event stream of every event emitted after the connection opens
//	@Tags			events
//	@Produce		event-stream
//	@Success		200
//	@Router			/events [get]
//	@Security		ApiKeyAuth
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	if s.bus == nil {
		sendError(w, "Events are not available", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		sendError(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, unsubscribe := s.bus.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Error().Err(err).Str("event", ev.Name).Msg("failed to encode event")
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Name, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
