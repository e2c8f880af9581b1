package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fpang/kidvid-composer/internal/renderhandoff"
	"github.com/fpang/kidvid-composer/internal/safezone"
	"github.com/fpang/kidvid-composer/internal/template"
)

// maxBodyBytes caps compose request bodies.
const maxBodyBytes = 64 << 10

// Handler serves the composer HTTP API.
type Handler struct {
	svc *Service
	mux *http.ServeMux
}

// NewHandler registers the API routes.
func NewHandler(svc *Service) *Handler {
	h := &Handler{svc: svc, mux: http.NewServeMux()}
	h.mux.HandleFunc("/api/health", h.handleHealth)
	h.mux.HandleFunc("/api/templates", h.handleTemplates)
	h.mux.HandleFunc("/api/compose", h.handleCompose)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "kidvid-composer",
	})
}

// templateSummary is the listing shape for GET /api/templates.
type templateSummary struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Title           string          `json:"title,omitempty"`
	DurationSeconds float64         `json:"durationSeconds"`
	Slots           []template.Slot `json:"slots"`
	SafeZones       []safezone.ID   `json:"safeZones"`
}

// GET /api/templates
func (h *Handler) handleTemplates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	registry := h.svc.Resolver.Registry()
	rules := h.svc.Resolver.Rules()

	out := []templateSummary{}
	if registry != nil {
		for _, id := range registry.IDs() {
			def, _ := registry.Get(id)
			zones, _ := rules.ZonesFor(def.Type)
			s := templateSummary{
				ID:              def.ID,
				Type:            def.Type,
				Title:           def.Title,
				DurationSeconds: def.TotalDurationSeconds(),
				SafeZones:       zones,
			}
			for _, ref := range def.Slots() {
				s.Slots = append(s.Slots, ref.Slot)
			}
			out = append(out, s)
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"templates": out})
}

// POST /api/compose
func (h *Handler) handleCompose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ComposeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Compose(r.Context(), req)
	if err == nil {
		respondJSON(w, http.StatusOK, result)
		return
	}

	var tmplErr *safezone.UnknownTemplateError
	switch {
	case errors.Is(err, ErrInvalidRequest):
		httpError(w, http.StatusBadRequest, result.Error)
	case errors.As(err, &tmplErr):
		httpError(w, http.StatusNotFound, result.Error)
	case IsConfigError(err):
		httpError(w, http.StatusUnprocessableEntity, result.Error)
	case errors.Is(err, ErrRenderDisabled):
		httpError(w, http.StatusServiceUnavailable, result.Error)
	case errors.Is(err, renderhandoff.ErrIncomplete):
		respondJSON(w, http.StatusConflict, result)
	case result.Composition != nil:
		// Resolved, but the render handoff failed.
		httpError(w, http.StatusBadGateway, result.Error, err.Error())
	default:
		httpError(w, http.StatusInternalServerError, result.Error, err.Error())
	}
}
