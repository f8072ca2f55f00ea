package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"cycling-route-service/internal/api/dto"
	"cycling-route-service/internal/ports"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

type HistoryHandler struct {
	Repo ports.PlanRepository
}

// List returns recent plans, newest first. The limit query parameter defaults
// to 50 and is capped at 100.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	plans, err := h.Repo.ListRecent(r.Context(), limit)
	if err != nil {
		log.Printf("list plans failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.HistoryResponse{Plans: make([]dto.PlanResponse, 0, len(plans))}
	for _, p := range plans {
		res.Plans = append(res.Plans, dto.FromPlan(p))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Get returns a single stored plan by id.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/history/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "plan not found")
		return
	}

	plan, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			log.Printf("get plan %q failed: %v", id, err)
			writeError(w, r, status, "internal server error")
			return
		}
		writeError(w, r, status, "plan not found")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromPlan(plan))
}
