package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sweeper-lite/replay"
)

const gamesPrefix = "/api/history/games/"

type HTTPHandler struct {
	ledger Service
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
	Step   *int32 `json:"step,omitempty"`
}

func NewHTTPHandler(ledgerService Service) *HTTPHandler {
	return &HTTPHandler{ledger: ledgerService}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/history/recent", h.handleRecent)
	mux.HandleFunc(gamesPrefix, h.handleGames)
}

func (h *HTTPHandler) handleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"))
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.ledger.ListRecent(ctx, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query recent games failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
	})
}

func (h *HTTPHandler) handleGames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	path := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, gamesPrefix))
	parts := strings.Split(strings.Trim(path, "/"), "/")
	gameID := strings.TrimSpace(parts[0])
	if gameID == "" {
		writeError(w, http.StatusBadRequest, "missing game id")
		return
	}

	switch {
	case len(parts) == 1:
		h.handleGetGame(w, r, gameID)
	case len(parts) == 2 && parts[1] == "replay":
		h.handleReplay(w, r, gameID)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *HTTPHandler) handleGetGame(w http.ResponseWriter, r *http.Request, gameID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	rec, err := h.ledger.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "query game failed")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *HTTPHandler) handleReplay(w http.ResponseWriter, r *http.Request, gameID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	tape, err := h.ledger.GetTape(ctx, gameID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "replay not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "query replay failed")
		return
	}

	result, err := replay.Run(*tape)
	if err != nil {
		var replayErr *replay.ReplayError
		if errors.As(err, &replayErr) {
			step := replayErr.StepIndex
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Error:  replayErr.Message,
				Reason: replayErr.Reason,
				Step:   &step,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "replay failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func parseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultRecentLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultRecentLimit
	}
	if n > maxRecentLimit {
		return maxRecentLimit
	}
	return n
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
