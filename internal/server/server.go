// Package server exposes flows over a JSON HTTP API.
//
// Routes:
//
//	GET    /node-types        addable node types with their default config
//	GET    /flows             stored flow summaries, newest first
//	POST   /flows             validate and store a new flow
//	GET    /flows/{id}        one stored document
//	PUT    /flows/{id}        validate and replace a stored flow
//	DELETE /flows/{id}        remove a flow
//	GET    /flows/{id}/dot    Graphviz rendering (?format=svg|png, ?detailed=true)
//	GET    /buyers            buyer directory
//	GET    /campaigns         campaign directory
//	GET    /metrics           Prometheus metrics
//
// Flow bodies are the persisted document shape. Every write is hydrated into
// a graph first, so structurally broken definitions are rejected before they
// reach the store.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/ivrflow/pkg/document"
	errs "github.com/matzehuels/ivrflow/pkg/errors"
	"github.com/matzehuels/ivrflow/pkg/flow"
	"github.com/matzehuels/ivrflow/pkg/lookup"
	"github.com/matzehuels/ivrflow/pkg/render"
	"github.com/matzehuels/ivrflow/pkg/render/nodelink"
	"github.com/matzehuels/ivrflow/pkg/store"
)

// maxBodySize bounds request bodies.
const maxBodySize = 4 << 20

// Server serves the flow API.
type Server struct {
	store   store.Store
	lookup  lookup.Provider
	log     *log.Logger
	reg     *prometheus.Registry
	metrics *metrics
}

// Option configures a Server.
type Option func(*Server)

// WithLookup sets the buyer and campaign directory.
func WithLookup(p lookup.Provider) Option {
	return func(s *Server) {
		if p != nil {
			s.lookup = p
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a server over st. Without [WithLookup] the directories are
// empty.
func New(st store.Store, opts ...Option) *Server {
	reg := prometheus.NewRegistry()
	s := &Server{
		store:   st,
		lookup:  lookup.NewStatic(nil, nil),
		log:     log.Default(),
		reg:     reg,
		metrics: newMetrics(reg),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/node-types", s.nodeTypes)
	r.Route("/flows", func(r chi.Router) {
		r.Get("/", s.listFlows)
		r.Post("/", s.createFlow)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getFlow)
			r.Put("/", s.putFlow)
			r.Delete("/", s.deleteFlow)
			r.Get("/dot", s.renderFlow)
		})
	})
	r.Get("/buyers", s.buyers)
	r.Get("/campaigns", s.campaigns)
	r.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	return r
}

// =============================================================================
// Registry
// =============================================================================

type nodeTypeInfo struct {
	Type          flow.NodeType `json:"type"`
	Label         string        `json:"label"`
	DefaultConfig flow.Config   `json:"defaultConfig"`
}

func (s *Server) nodeTypes(w http.ResponseWriter, r *http.Request) {
	types := flow.NodeTypes()
	out := make([]nodeTypeInfo, len(types))
	for i, t := range types {
		out[i] = nodeTypeInfo{Type: t, Label: flow.DefaultLabel(t), DefaultConfig: flow.DefaultConfig(t)}
	}
	s.writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// Flows
// =============================================================================

func (s *Server) listFlows(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) getFlow(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) createFlow(w http.ResponseWriter, r *http.Request) {
	d, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d.ID = ""
	s.save(w, r, d, http.StatusCreated)
}

func (s *Server) putFlow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !store.ValidID(id) {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "invalid flow id %q", id))
		return
	}
	d, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d.ID = id
	s.save(w, r, d, http.StatusOK)
}

// readBody decodes the request body, capped at maxBodySize.
func readBody(w http.ResponseWriter, r *http.Request) (*document.Document, error) {
	d, err := document.Read(http.MaxBytesReader(w, r.Body, maxBodySize))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, errs.Wrap(errs.ErrCodeTooLarge, err, "flow document exceeds %d bytes", tooLarge.Limit)
	}
	return d, err
}

// save hydrates d, rebuilds it through the editor's save path and stores it.
func (s *Server) save(w http.ResponseWriter, r *http.Request, d *document.Document, status int) {
	g, err := document.Hydrate(d, flow.WithLogger(s.log))
	if err != nil {
		s.metrics.saves.WithLabelValues(saveInvalid).Inc()
		s.writeError(w, r, err)
		return
	}

	notify := document.NotifierFunc(func(level document.Level, msg string) {
		s.log.Debug("save", "level", level, "message", msg)
	})
	saved, err := document.Save(r.Context(), document.MetaOf(d), g, s.store, notify)
	if err != nil {
		s.metrics.saves.WithLabelValues(saveResult(err)).Inc()
		s.writeError(w, r, err)
		return
	}
	s.metrics.saves.WithLabelValues(saveOK).Inc()
	s.log.Info("flow saved", "id", saved.ID, "name", saved.Name, "nodes", len(saved.FlowDefinition.Nodes))
	s.writeJSON(w, status, saved)
}

func (s *Server) deleteFlow(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) renderFlow(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := document.Hydrate(d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = render.FormatDOT
	}
	detailed, _ := strconv.ParseBool(q.Get("detailed"))

	out, err := render.Flow(r.Context(), g, format, nodelink.Options{Detailed: detailed})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// =============================================================================
// Lookups
// =============================================================================

func (s *Server) buyers(w http.ResponseWriter, r *http.Request) {
	list, err := s.lookup.Buyers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []lookup.Buyer{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) campaigns(w http.ResponseWriter, r *http.Request) {
	list, err := s.lookup.Campaigns(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []lookup.Campaign{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

// =============================================================================
// Responses
// =============================================================================

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.log.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, errorBody{Code: code, Message: errs.UserMessage(err)})
}

// statusOf maps an error code to an HTTP status.
func statusOf(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeNotFound, errs.ErrCodeFlowNotFound:
		return http.StatusNotFound
	case errs.ErrCodeValidation:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidFormat, errs.ErrCodeInvalidNodeType, errs.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errs.ErrCodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case errs.ErrCodeStructuralRejection:
		return http.StatusConflict
	case errs.ErrCodeNetwork:
		return http.StatusBadGateway
	case errs.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
