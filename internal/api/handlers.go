package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/graphsight/graphsight/internal/config"
	"github.com/graphsight/graphsight/internal/engine"
	"github.com/graphsight/graphsight/internal/models"
	"github.com/graphsight/graphsight/internal/services"
	"github.com/graphsight/graphsight/internal/utils"
)

const maxBodyBytes = 4 << 20

// Handler exposes the analysis operations over JSON HTTP. Requests that omit
// parameters fall back to the configured engine defaults.
type Handler struct {
	logger   *slog.Logger
	service  *services.AnalysisService
	defaults config.EngineConfig
}

// NewHandler wires the analysis service into an HTTP handler.
func NewHandler(logger *slog.Logger, service *services.AnalysisService, defaults config.EngineConfig) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, defaults: defaults}
}

// Routes builds the route table for the engine API.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/analyze/correlations", h.analyzeCorrelations)
	mux.HandleFunc("POST /api/v1/analyze/impact", h.analyzeImpact)
	mux.HandleFunc("GET /api/v1/analyze/patterns", h.analyzePatterns)
	mux.HandleFunc("POST /api/v1/simulate/cascade", h.simulateCascade)
	mux.HandleFunc("PUT /api/v1/topology", h.replaceTopology)
	mux.HandleFunc("POST /api/v1/events", h.appendEvents)
	mux.HandleFunc("GET /healthz", h.healthz)
	return mux
}

// Pointer fields distinguish an omitted parameter from an explicit zero, so
// a client can request minConfidence 0 without falling back to the default.
type correlationsBody struct {
	TimeWindow    string   `json:"timeWindow"`
	MaxHops       *int     `json:"maxHops"`
	MinConfidence *float64 `json:"minConfidence"`
}

func (h *Handler) analyzeCorrelations(w http.ResponseWriter, r *http.Request) {
	var body correlationsBody
	if !h.decode(w, r, &body) {
		return
	}

	req := models.CorrelationRequest{
		TimeWindow:    utils.ParseDurationDefault(body.TimeWindow, h.defaults.TimeWindow),
		MaxHops:       h.defaults.MaxHops,
		MinConfidence: h.defaults.MinConfidence,
	}
	if body.MaxHops != nil {
		req.MaxHops = *body.MaxHops
	}
	if body.MinConfidence != nil {
		req.MinConfidence = *body.MinConfidence
	}
	resp, err := h.service.AnalyzeCorrelations(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type impactBody struct {
	TimeWindow string `json:"timeWindow"`
}

func (h *Handler) analyzeImpact(w http.ResponseWriter, r *http.Request) {
	var body impactBody
	if !h.decode(w, r, &body) {
		return
	}

	req := models.ImpactRequest{TimeWindow: utils.ParseDurationDefault(body.TimeWindow, h.defaults.TimeWindow)}
	resp, err := h.service.AssessImpact(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) analyzePatterns(w http.ResponseWriter, r *http.Request) {
	patterns, err := h.service.DetectPatterns(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"patterns": patterns,
		"total":    len(patterns),
	})
}

type cascadeBody struct {
	RootComponentID  string `json:"rootComponentId"`
	CascadeDepth     int    `json:"cascadeDepth"`
	MaxAffected      int    `json:"maxAffected"`
	TimeDelayMinutes int    `json:"timeDelayMinutes"`
}

func (h *Handler) simulateCascade(w http.ResponseWriter, r *http.Request) {
	var body cascadeBody
	if !h.decode(w, r, &body) {
		return
	}

	req := models.CascadeRequest{
		RootID:      body.RootComponentID,
		Depth:       body.CascadeDepth,
		MaxAffected: body.MaxAffected,
		TimeDelay:   time.Duration(body.TimeDelayMinutes) * time.Minute,
	}
	if req.TimeDelay == 0 {
		req.TimeDelay = h.defaults.CascadeDelay
	}
	if req.MaxAffected == 0 {
		req.MaxAffected = h.defaults.CascadeMaxAffected
	}
	result, err := h.service.SimulateCascade(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

type topologyBody struct {
	Items         []models.ConfigurationItem `json:"items"`
	Relationships []models.Relationship      `json:"relationships"`
}

func (h *Handler) replaceTopology(w http.ResponseWriter, r *http.Request) {
	var body topologyBody
	if !h.decode(w, r, &body) {
		return
	}
	for _, item := range body.Items {
		if item.ID == "" {
			h.badRequest(w, "every item needs an id")
			return
		}
	}

	h.service.ReplaceTopology(body.Items, body.Relationships)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"items":         len(body.Items),
		"relationships": len(body.Relationships),
	})
}

type eventsBody struct {
	Events []models.Event `json:"events"`
}

func (h *Handler) appendEvents(w http.ResponseWriter, r *http.Request) {
	var body eventsBody
	if !h.decode(w, r, &body) {
		return
	}
	if len(body.Events) == 0 {
		h.badRequest(w, "events list is empty")
		return
	}
	for i := range body.Events {
		if body.Events[i].ID == "" {
			h.badRequest(w, "every event needs an id")
			return
		}
		if body.Events[i].Timestamp.IsZero() {
			body.Events[i].Timestamp = time.Now().UTC()
		}
	}

	h.service.AppendEvents(body.Events...)
	h.writeJSON(w, http.StatusAccepted, map[string]any{"accepted": len(body.Events)})
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"latencyP95": h.service.LatencyP95().String(),
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(out); err != nil {
		// An empty body means "use defaults" for the analysis endpoints.
		if errors.Is(err, io.EOF) {
			return true
		}
		h.badRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, engine.ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	h.logger.Error("request failed", slog.Any("error", err))
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("encode response", slog.Any("error", err))
	}
}
