package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rpggio/codegenesis/internal/domain/lifecycle"
	"github.com/rpggio/codegenesis/internal/export"
)

const (
	eventBuffer       = 16
	heartbeatInterval = 15 * time.Second
)

// RPCHandler dispatches named methods.
type RPCHandler interface {
	Handle(ctx context.Context, method string, params json.RawMessage) (any, error)
}

// Lifecycle is the part of the lifecycle manager served outside JSON-RPC.
type Lifecycle interface {
	State() lifecycle.State
	Subscribe(fn func(lifecycle.State)) func()
	Export(ctx context.Context, w io.Writer) (string, error)
}

// Options configures the HTTP router. MCP and Metrics are mounted only
// when set.
type Options struct {
	RPC       RPCHandler
	Lifecycle Lifecycle
	MCP       http.Handler
	Metrics   http.Handler
	// AuthToken guards /rpc, /state, /export and /events when non-empty.
	// /mcp authenticates tool calls itself.
	AuthToken string
	Logger    *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	rpc       RPCHandler
	lifecycle Lifecycle
	logger    *slog.Logger
	heartbeat time.Duration
}

// NewServer creates an HTTP server router with middleware.
func NewServer(opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := &Server{
		rpc:       opts.RPC,
		lifecycle: opts.Lifecycle,
		logger:    logger,
		heartbeat: heartbeatInterval,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))

	r.Get("/health", srv.handleHealth)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
	}

	r.Group(func(r chi.Router) {
		if opts.AuthToken != "" {
			r.Use(AuthMiddleware(opts.AuthToken))
		}
		r.Post("/rpc", srv.handleRPC)
		r.Get("/state", srv.handleState)
		r.Get("/export", srv.handleExport)
		r.Get("/events", srv.handleEvents)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		if errors.Is(err, errParse) {
			WriteError(w, nil, ErrParseCode, "parse error", nil)
			return
		}
		WriteError(w, nil, ErrInvalidReq, "invalid request", nil)
		return
	}

	result, err := s.rpc.Handle(r.Context(), req.Method, req.Params)
	if err != nil {
		WriteHandlerError(w, req.ID, err)
		return
	}

	WriteResult(w, req.ID, result)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.lifecycle.State())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	projectID, err := s.lifecycle.Export(r.Context(), &buf)
	if err != nil {
		s.logger.Error("export failed", "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.ArchiveName))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Project-Id", projectID)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handleEvents streams lifecycle state as server-sent events. The current
// state is sent first; slow clients skip intermediate states.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	updates := make(chan lifecycle.State, eventBuffer)
	unsubscribe := s.lifecycle.Subscribe(func(state lifecycle.State) {
		select {
		case updates <- state:
		default:
			s.logger.Warn("dropping state event; client buffer full")
		}
	})
	defer unsubscribe()

	if err := writeEvent(w, s.lifecycle.State()); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("event stream closed", "error", ctx.Err())
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case state := <-updates:
			if err := writeEvent(w, state); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w io.Writer, state lifecycle.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
	return err
}
