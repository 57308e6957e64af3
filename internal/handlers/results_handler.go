// Package handlers serves published snapshots to the chart layer
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"escrutinio/internal/models"
	"escrutinio/internal/poller"
	"escrutinio/internal/results"
)

// ResultsHandler serves the snapshots of every registered contest
type ResultsHandler struct {
	manager *poller.Manager
	logger  *zap.Logger
}

// NewResultsHandler creates a handler over manager
func NewResultsHandler(manager *poller.Manager, logger *zap.Logger) *ResultsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultsHandler{
		manager: manager,
		logger:  logger.Named("handlers"),
	}
}

// Register adds the API routes to r
func (h *ResultsHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/contests", h.HandleListContests).Methods(http.MethodGet)
	r.HandleFunc("/api/contests/{id}/regions", h.HandleGetRegions).Methods(http.MethodGet)
	r.HandleFunc("/api/contests/{id}/regions/{key}", h.HandleGetRegion).Methods(http.MethodGet)
	r.HandleFunc("/api/contests/{id}/comparison/{key}", h.HandleGetComparison).Methods(http.MethodGet)
	r.HandleFunc("/api/contests/{id}/winners", h.HandleGetWinners).Methods(http.MethodGet)
	r.HandleFunc("/api/contests/{id}/turnout", h.HandleGetTurnout).Methods(http.MethodGet)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
}

type contestSummary struct {
	models.Contest
	Dispatch  string     `json:"dispatch,omitempty"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
}

// HandleListContests lists contests with their latest dispatch
func (h *ResultsHandler) HandleListContests(w http.ResponseWriter, r *http.Request) {
	pollers := h.manager.All()
	out := make([]contestSummary, 0, len(pollers))
	for _, p := range pollers {
		s := contestSummary{Contest: *p.Contest()}
		if snap := p.Snapshots().Load(); snap != nil {
			s.Dispatch = snap.Dispatch
			fetched := snap.FetchedAt
			s.FetchedAt = &fetched
		}
		out = append(out, s)
	}
	h.writeJSON(w, http.StatusOK, out)
}

// HandleGetRegions returns every region of the current snapshot
func (h *ResultsHandler) HandleGetRegions(w http.ResponseWriter, r *http.Request) {
	_, snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, snap.Current)
}

// HandleGetRegion returns one region, in chart order with ?order=chart
func (h *ResultsHandler) HandleGetRegion(w http.ResponseWriter, r *http.Request) {
	p, snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	key := models.GeoKey(mux.Vars(r)["key"])
	if !p.Contest().HasKey(key) {
		h.writeError(w, http.StatusNotFound, "Region not found")
		return
	}
	region, ok := snap.Current[key]
	if !ok {
		h.writeError(w, http.StatusNotFound, "No data for region")
		return
	}
	if r.URL.Query().Get("order") == "chart" {
		region.Parties = region.ChartOrder()
	}
	h.writeJSON(w, http.StatusOK, region)
}

// HandleGetComparison returns current and baseline results of one region
func (h *ResultsHandler) HandleGetComparison(w http.ResponseWriter, r *http.Request) {
	_, snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	cmp, err := results.Compare(snap, models.GeoKey(mux.Vars(r)["key"]))
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Region not found")
		return
	}
	h.writeJSON(w, http.StatusOK, cmp)
}

// HandleGetWinners returns the winner of every region
func (h *ResultsHandler) HandleGetWinners(w http.ResponseWriter, r *http.Request) {
	p, snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, results.Winners(p.Contest(), snap.Current))
}

// HandleGetTurnout returns the turnout checkpoints
func (h *ResultsHandler) HandleGetTurnout(w http.ResponseWriter, r *http.Request) {
	_, snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	turnout := snap.Turnout
	if turnout == nil {
		turnout = []models.TurnoutCheckpoint{}
	}
	h.writeJSON(w, http.StatusOK, turnout)
}

// snapshot resolves the contest of the request and its published snapshot,
// answering 404 or 503 itself when either is missing
func (h *ResultsHandler) snapshot(w http.ResponseWriter, r *http.Request) (*poller.Poller, *models.Snapshot, bool) {
	p, err := h.manager.Get(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Contest not found")
		return nil, nil, false
	}
	snap := p.Snapshots().Load()
	if snap == nil {
		h.writeError(w, http.StatusServiceUnavailable, "No data yet")
		return nil, nil, false
	}
	return p, snap, true
}

func (h *ResultsHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("encode response", zap.Error(err))
	}
}

func (h *ResultsHandler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
