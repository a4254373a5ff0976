// Package api exposes the knowledge provider over HTTP: pattern queries,
// operation and metadata discovery, node lookups, and health/metrics.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/mockkp/simplekp/pkg/api/middleware"
	"github.com/mockkp/simplekp/pkg/logging"
	"github.com/mockkp/simplekp/pkg/metrics"
	"github.com/mockkp/simplekp/pkg/query"
	"github.com/mockkp/simplekp/pkg/registry"
	"github.com/mockkp/simplekp/pkg/storage"
)

// Server handles HTTP requests against a loaded graph store.
type Server struct {
	store    *storage.GraphStore
	matcher  *query.Matcher
	logger   logging.Logger
	metrics  *metrics.Registry
	validate *validator.Validate
	cors     []string
	graphql  http.Handler
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger attaches a logger.
func WithLogger(logger logging.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics attaches a metrics registry and enables GET /metrics.
func WithMetrics(reg *metrics.Registry) ServerOption {
	return func(s *Server) { s.metrics = reg }
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) ServerOption {
	return func(s *Server) { s.cors = origins }
}

// WithGraphQL mounts a GraphQL handler at POST /graphql.
func WithGraphQL(handler http.Handler) ServerOption {
	return func(s *Server) { s.graphql = handler }
}

// NewServer creates a server over the given store.
func NewServer(store *storage.GraphStore, opts ...ServerOption) *Server {
	s := &Server{
		store:    store,
		logger:   logging.Nop(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	matcherOpts := []query.MatcherOption{query.WithLogger(s.logger)}
	if s.metrics != nil {
		matcherOpts = append(matcherOpts, query.WithMetrics(s.metrics))
	}
	s.matcher = query.NewMatcher(store, matcherOpts...)
	return s
}

// Routes returns the full handler with middleware applied.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost)
	r.HandleFunc("/ops", s.handleOperations).Methods(http.MethodGet)
	r.HandleFunc("/metadata", s.handleMetadata).Methods(http.MethodGet)
	r.HandleFunc("/nodes/{id}", s.handleGetNode).Methods(http.MethodGet)
	r.HandleFunc("/nodes/{id}/edges", s.handleGetNodeEdges).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	if s.graphql != nil {
		r.Handle("/graphql", s.graphql).Methods(http.MethodPost)
	}

	var handler http.Handler = r
	handler = middleware.CORS(s.cors)(handler)
	handler = middleware.Logging(s.logger, s.metrics)(handler)
	handler = middleware.PanicRecovery(s.logger)(handler)
	handler = middleware.RequestID()(handler)
	return handler
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	pattern := toQueryGraph(req.Message.QueryGraph)

	start := time.Now()
	rs, err := s.matcher.Match(r.Context(), pattern)
	if err != nil {
		if errors.Is(err, query.ErrInvalidPattern) {
			s.writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, r.Context().Err()) && r.Context().Err() != nil {
			// Client went away; nothing useful to write.
			return
		}
		s.logger.Error("query failed", logging.Err(err),
			logging.F("request_id", middleware.GetRequestID(r)))
		s.writeError(w, r, http.StatusInternalServerError, "query failed")
		return
	}

	s.logger.Info("query matched",
		logging.F("results", len(rs.Results)),
		logging.F("duration_ms", time.Since(start).Milliseconds()),
		logging.F("request_id", middleware.GetRequestID(r)))

	results, kg := toWireResults(rs)
	s.writeJSON(w, http.StatusOK, QueryResponse{
		Message: ResponseMessage{
			QueryGraph:     req.Message.QueryGraph,
			KnowledgeGraph: kg,
			Results:        results,
		},
	})
}

func (s *Server) handleOperations(w http.ResponseWriter, r *http.Request) {
	ops := s.store.Operations()
	resp := OperationsResponse{Operations: make([]Operation, 0, len(ops))}
	for _, op := range ops {
		resp.Operations = append(resp.Operations, Operation{
			SubjectCategory: string(op.SubjectCategory),
			Predicate:       string(op.Predicate),
			ObjectCategory:  string(op.ObjectCategory),
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	prefixes := make(map[string][]string)
	for cat, ps := range s.store.CuriePrefixes() {
		prefixes[string(cat)] = ps
	}
	s.writeJSON(w, http.StatusOK, MetadataResponse{
		NodeCount:     s.store.NodeCount(),
		EdgeCount:     s.store.EdgeCount(),
		CuriePrefixes: prefixes,
	})
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	node, err := s.store.GetNode(id)
	if err != nil {
		if storage.IsNotFound(err) {
			s.writeError(w, r, http.StatusNotFound, "node not found: "+id)
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]WireNode{
		node.ID: {
			Category:   string(node.Category),
			Name:       node.Name,
			Attributes: node.Attributes,
		},
	})
}

func (s *Server) handleGetNodeEdges(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.store.GetNode(id); err != nil {
		if storage.IsNotFound(err) {
			s.writeError(w, r, http.StatusNotFound, "node not found: "+id)
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	dir := storage.DirectionBoth
	switch r.URL.Query().Get("direction") {
	case "":
	case "out":
		dir = storage.DirectionOutgoing
	case "in":
		dir = storage.DirectionIncoming
	case "both":
	default:
		s.writeError(w, r, http.StatusBadRequest, "direction must be one of out, in, both")
		return
	}

	edges := s.store.GetEdges(id, dir, registry.Predicate(r.URL.Query().Get("predicate")))
	out := make(map[string]WireEdge, len(edges))
	for _, e := range edges {
		out[e.ID] = WireEdge{
			Subject:    e.Subject,
			Object:     e.Object,
			Predicate:  string(e.Predicate),
			Attributes: e.Attributes,
		}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if !s.store.Loaded() {
		status = "loading"
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, map[string]string{"status": status})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", logging.Err(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{
		Error:     msg,
		RequestID: middleware.GetRequestID(r),
	})
}
