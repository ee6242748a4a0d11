package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/raysh454/pharmaflow/internal/app"
	"github.com/raysh454/pharmaflow/internal/logging"
	"github.com/raysh454/pharmaflow/internal/model"
	"github.com/raysh454/pharmaflow/internal/report"
	_ "github.com/raysh454/pharmaflow/internal/server/docs" // registers the swagger spec
)

const (
	serviceName   = "Pharma Agentic AI"
	bannerMessage = "Pharma Agentic AI - Multi-Agent Drug Discovery System"
)

// Server is the HTTP + WebSocket API surface for pharmaflow.
type Server struct {
	cfg          Config
	orchestrator *app.Orchestrator
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       logging.Logger
}

// NewServer wires the routes around an already-built orchestrator. The
// server does not own the orchestrator; the caller closes it.
func NewServer(cfg Config, orch *app.Orchestrator, logger logging.Logger) (*Server, error) {
	if orch == nil {
		return nil, errors.New("orchestrator is required")
	}
	if logger == nil {
		logger = logging.New("server")
	}

	r := chi.NewRouter()
	s := &Server{
		cfg:          cfg,
		orchestrator: orch,
		router:       r,
		logger:       logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/api/v1/discover", s.optionsHandler("POST"))
	r.Options("/api/v1/status/{id}", s.optionsHandler("GET"))
	r.Options("/api/v1/results/{id}", s.optionsHandler("GET"))
	r.Options("/api/v1/agents", s.optionsHandler("GET"))
	r.Options("/api/v1/requests", s.optionsHandler("GET"))
	r.Options("/api/v1/reports/{id}", s.optionsHandler("GET"))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Post("/api/v1/discover", s.handleDiscover)
	r.Get("/api/v1/status/{id}", s.handleStatus)
	r.Get("/api/v1/results/{id}", s.handleResults)
	r.Get("/api/v1/agents", s.handleAgents)
	r.Get("/api/v1/requests", s.handleListRequests)
	r.Get("/api/v1/reports/{id}", s.handleReport)

	// WebSocket for request progress
	r.Get("/ws/api/v1/results/{id}", s.handleResultsWS)

	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/index.html", http.StatusMovedPermanently)
	})
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeLookupError maps ledger lookups onto 404/500.
func (s *Server) writeLookupError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusNotFound, "request not found")
		return
	}
	s.logger.Warn("looking up request", logging.Field{Key: "request_id", Value: id}, logging.Field{Key: "error", Value: err.Error()})
	writeError(w, http.StatusInternalServerError, err.Error())
}

// --- HTTP handlers ---

// handleRoot godoc
// @Summary Service banner
// @Tags meta
// @Produce json
// @Success 200 {object} BannerResponse
// @Router / [get]
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, BannerResponse{
		Message: bannerMessage,
		Status:  "operational",
		Version: s.cfg.Version,
		Docs:    "/docs",
	})
}

// handleHealth godoc
// @Summary Liveness probe
// @Tags meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   serviceName,
	})
}

// handleDiscover godoc
// @Summary Submit a discovery request
// @Description Validates the request, registers it and fans it out to every agent in the background.
// @Tags discovery
// @Accept json
// @Produce json
// @Param request body DiscoverRequest true "Molecule to investigate"
// @Success 200 {object} app.Receipt
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/discover [post]
func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	var body DiscoverRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.Warn("decoding discover body", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	receipt, err := s.orchestrator.Submit(r.Context(), model.DiscoveryRequest{
		Molecule:   body.MoleculeName,
		Indication: body.Indication,
		Filters:    body.Filters,
	})
	switch {
	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, app.ErrShuttingDown):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		s.logger.Error("submitting request", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("accepted discovery request", logging.Field{Key: "request_id", Value: receipt.RequestID})
	writeJSON(w, http.StatusOK, receipt)
}

// handleStatus godoc
// @Summary Request status
// @Tags discovery
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} app.StatusView
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/status/{id} [get]
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.orchestrator.QueryStatus(id)
	if err != nil {
		s.writeLookupError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleResults godoc
// @Summary Request results
// @Description Findings are present only once the request has completed.
// @Tags discovery
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} ResultsResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/results/{id} [get]
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.orchestrator.QueryResults(id)
	if err != nil {
		s.writeLookupError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsResponse(rec))
}

// handleAgents godoc
// @Summary Agent catalog
// @Tags meta
// @Produce json
// @Success 200 {object} AgentsResponse
// @Router /api/v1/agents [get]
func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	cat := s.orchestrator.Agents()
	writeJSON(w, http.StatusOK, AgentsResponse{Agents: cat, TotalAgents: len(cat)})
}

// handleListRequests godoc
// @Summary List known requests, newest first
// @Tags discovery
// @Produce json
// @Param limit query int false "Maximum number of requests"
// @Success 200 {array} app.StatusView
// @Router /api/v1/requests [get]
func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	reqs := s.orchestrator.ListRequests()
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v >= 0 && v < len(reqs) {
			reqs = reqs[:v]
		}
	}
	s.logger.Info("listed requests", logging.Field{Key: "count", Value: len(reqs)})
	writeJSON(w, http.StatusOK, reqs)
}

// handleReport godoc
// @Summary Download a generated report
// @Tags discovery
// @Produce html
// @Produce application/pdf
// @Param id path string true "Request ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/reports/{id} [get]
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	art, err := s.orchestrator.Report(r.Context(), id)
	switch {
	case errors.Is(err, report.ErrArtifactNotFound), errors.Is(err, app.ErrNoReports):
		writeError(w, http.StatusNotFound, "report not found")
		return
	case err != nil:
		s.logger.Warn("loading report", logging.Field{Key: "request_id", Value: id}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Body)
}

// WebSockets

// handleResultsWS streams the current status, every later transition, and
// the final results, then closes the connection.
func (s *Server) handleResultsWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, events, cancel, err := s.orchestrator.Watch(id)
	if err != nil {
		s.writeLookupError(w, id, err)
		return
	}
	defer cancel()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(model.Event{RequestID: snap.ID, Status: snap.State, Error: snap.Error, At: snap.CreatedAt}); err != nil {
		return
	}

	for ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			// Assume client disconnected
			return
		}
	}

	if rec, err := s.orchestrator.QueryResults(id); err == nil {
		_ = conn.WriteJSON(resultsResponse(rec))
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
}
