package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/yaml"
	"github.com/google/uuid"
)

// MaxRequestBytes caps the size of a crawl request body.
const MaxRequestBytes = 1 << 20

// RequestIDHeader carries the request ID on requests and responses.
const RequestIDHeader = "X-Request-Id"

// Handler serves the pipeline over HTTP.
//
//	POST /crawl    run the pipeline for {"url": ..., "config": {...}}
//	GET  /health   liveness probe
//	GET  /metrics  metrics, when a metrics handler is set
type Handler struct {
	harvester harvest.Harvester
	logger    *slog.Logger
	mux       *http.ServeMux
}

// NewHandler returns a Handler running requests through harvester.
// metrics may be nil.
func NewHandler(harvester harvest.Harvester, metrics http.Handler, logger *slog.Logger) *Handler {
	h := &Handler{
		harvester: harvester,
		logger:    logger,
		mux:       http.NewServeMux(),
	}
	h.mux.HandleFunc("POST /crawl", h.handleCrawl)
	h.mux.HandleFunc("GET /health", h.handleHealth)
	if metrics != nil {
		h.mux.Handle("GET /metrics", metrics)
	}
	return h
}

// ServeHTTP assigns a request ID and dispatches the request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
		r.Header.Set(RequestIDHeader, id)
	}
	w.Header().Set(RequestIDHeader, id)
	h.mux.ServeHTTP(w, r)
}

// crawlRequest is the body of POST /crawl.
type crawlRequest struct {
	URL    string         `yaml:"url"`
	Config harvest.Config `yaml:"config"`
}

func (h *Handler) handleCrawl(w http.ResponseWriter, r *http.Request) {
	req := crawlRequest{Config: harvest.DefaultConfig()}
	if err := yaml.Decode(io.LimitReader(r.Body, MaxRequestBytes), &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.URL == "" {
		h.writeError(w, r, harvest.Errorf(harvest.EINVALID, "url required"))
		return
	}

	result, err := h.harvester.Harvest(r.Context(), req.URL, req.Config)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("crawl",
		"requestID", r.Header.Get(RequestIDHeader),
		"url", req.URL,
		"success", result.Success,
		"links", len(result.Links.Internal)+len(result.Links.External),
		"tables", len(result.Tables),
		"records", len(result.ExtractedContent),
	)
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse is the body of every error reply.
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	id := r.Header.Get(RequestIDHeader)
	if status >= 500 {
		h.logger.Error("request failed", "requestID", id, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: harvest.ErrorMessage(err), RequestID: id})
}

// errorStatus maps error codes to HTTP status codes.
func errorStatus(err error) int {
	switch harvest.ErrorCode(err) {
	case harvest.EINVALID:
		return http.StatusBadRequest
	case harvest.ENOTFOUND:
		return http.StatusNotFound
	case harvest.EUNAVAILABLE:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
