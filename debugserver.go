package eventhub

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/GoCodeAlone/eventhub/internal/health"
	"github.com/GoCodeAlone/eventhub/internal/lifecycle"
)

// DebugServer exposes read-only introspection over HTTP: extension
// registry state, health aggregation, the hub's own shared state, and
// recorded lifecycle transitions. Built on a bare chi.Router on an
// http.Server, narrowed to a single read-only mux since this surface has
// no TLS, reverse-proxy, or write-path concerns.
type DebugServer struct {
	hub    *EventHub
	server *http.Server
}

// NewDebugServer builds a DebugServer bound to addr, serving hub's
// introspection endpoints. It is not started until Start is called.
func NewDebugServer(hub *EventHub, addr string) *DebugServer {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	ds := &DebugServer{hub: hub}
	r.Get("/healthz", ds.handleHealth)
	r.Get("/extensions", ds.handleExtensions)
	r.Get("/sharedstate/hub", ds.handleHubState)
	r.Get("/lifecycle", ds.handleLifecycle)

	ds.server = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return ds
}

// Start begins serving in the background. Listen errors other than a clean
// shutdown are reported on errCh (capacity 1; never blocks the caller).
func (d *DebugServer) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := d.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// Shutdown gracefully stops the HTTP server.
func (d *DebugServer) Shutdown(ctx context.Context) error {
	return d.server.Shutdown(ctx)
}

type extensionView struct {
	Name                     string            `json:"name"`
	FriendlyName             string            `json:"friendlyName"`
	Version                  string            `json:"version"`
	Metadata                 map[string]string `json:"metadata,omitempty"`
	LastProcessedEventNumber int64             `json:"lastProcessedEventNumber"`
	RunState                 string            `json:"runState"`
}

func (d *DebugServer) handleExtensions(w http.ResponseWriter, r *http.Request) {
	records := d.hub.ExtensionRecords()
	out := make([]extensionView, 0, len(records))
	for _, rec := range records {
		out = append(out, extensionView{
			Name:                     rec.Name,
			FriendlyName:             rec.FriendlyName,
			Version:                  rec.Version,
			Metadata:                 rec.Metadata,
			LastProcessedEventNumber: rec.LastProcessedEventNumber,
			RunState:                 rec.RunState.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (d *DebugServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	snapshot := d.hub.HealthSnapshot()
	status := http.StatusOK
	if snapshot.Overall == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, snapshot)
}

func (d *DebugServer) handleHubState(w http.ResponseWriter, r *http.Request) {
	result := d.hub.GetHubState()
	writeJSON(w, http.StatusOK, result)
}

func (d *DebugServer) handleLifecycle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var criteria lifecycle.QueryCriteria
	if ext := q.Get("extension"); ext != "" {
		criteria.ExtensionNames = []string{ext}
	}
	if limit := q.Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			criteria.Limit = n
		}
	}
	history := d.hub.LifecycleHistory(criteria)
	writeJSON(w, http.StatusOK, history)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
