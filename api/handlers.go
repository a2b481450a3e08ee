package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nicoberrocal/arenaCore/sim"
)

var (
	simulationsRun = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arenacore_simulations_total",
		Help: "Simulations run through the API, by outcome.",
	}, []string{"outcome"})

	simulationTicks = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arenacore_simulation_ticks",
		Help:    "Ticks per finished simulation.",
		Buckets: prometheus.ExponentialBuckets(30, 2, 8),
	})
)

// SimulateRequest is the POST /api/simulate body.
type SimulateRequest struct {
	Team0 []sim.Placement `json:"team0"`
	Team1 []sim.Placement `json:"team1"`
	Seed  *int64          `json:"seed,omitempty"`
}

// SynergyRequest is the POST /api/synergies body.
type SynergyRequest struct {
	Units []string `json:"units"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	templates, err := s.loader.Templates()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type unitEntry struct {
		ID      string   `json:"id"`
		Name    string   `json:"name"`
		Traits  []string `json:"traits"`
		Ability string   `json:"ability,omitempty"`
		Cost    int      `json:"cost"`
	}

	var result []unitEntry
	for id, tmpl := range templates.Units {
		result = append(result, unitEntry{
			ID:      id,
			Name:    tmpl.Name,
			Traits:  tmpl.Traits,
			Ability: tmpl.Ability,
			Cost:    tmpl.Cost,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"units": result})
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	templates, err := s.loader.Templates()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"items": templates.Items})
}

func (s *Server) handleTraits(w http.ResponseWriter, r *http.Request) {
	templates, err := s.loader.Templates()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"traits": templates.Traits})
}

// handleSynergies computes active trait thresholds for a roster without
// running a battle. Unique base ids per trait, highest threshold wins.
func (s *Server) handleSynergies(w http.ResponseWriter, r *http.Request) {
	var req SynergyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad request body")
		return
	}

	templates, err := s.loader.Templates()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	holders := map[string]map[string]bool{}
	for _, unitID := range req.Units {
		tmpl, ok := templates.Units[unitID]
		if !ok {
			continue
		}
		for _, trait := range tmpl.Traits {
			if holders[trait] == nil {
				holders[trait] = map[string]bool{}
			}
			holders[trait][tmpl.ID] = true
		}
	}

	type synergyEntry struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		Count           int    `json:"count"`
		Thresholds      []int  `json:"thresholds"`
		ActiveThreshold *int   `json:"active_threshold"`
		IsActive        bool   `json:"is_active"`
	}

	var result []synergyEntry
	for traitID, baseIDs := range holders {
		trait, ok := templates.Traits[traitID]
		if !ok {
			continue
		}

		entry := synergyEntry{
			ID:         traitID,
			Name:       trait.Name,
			Count:      len(baseIDs),
			Thresholds: trait.ThresholdCounts(),
		}
		if threshold := trait.ActiveThreshold(len(baseIDs)); threshold != nil {
			count := threshold.Count
			entry.ActiveThreshold = &count
			entry.IsActive = true
		}
		result = append(result, entry)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"synergies": result})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	if len(req.Team0) == 0 || len(req.Team1) == 0 {
		s.writeError(w, http.StatusBadRequest, "both teams need at least one unit")
		return
	}

	templates, err := s.loader.Templates()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	cfg, err := s.loader.SimulationConfig()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	seed := int64(1)
	if req.Seed != nil {
		seed = *req.Seed
	}

	result, err := sim.Run([2][]sim.Placement{req.Team0, req.Team1}, seed, cfg, templates)
	if err != nil {
		simulationsRun.WithLabelValues("error").Inc()
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome := "draw"
	if result.WinnerTeam != nil {
		outcome = "decided"
	}
	simulationsRun.WithLabelValues(outcome).Inc()
	simulationTicks.Observe(float64(result.TotalTicks))

	if s.store != nil {
		if err := s.store.InsertTrace(result.Trace); err != nil {
			s.log.Error().Err(err).Msg("persist trace")
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"seed":             seed,
		"winner_team":      result.WinnerTeam,
		"total_ticks":      result.TotalTicks,
		"duration_seconds": result.DurationSeconds,
		"survivors":        result.Survivors,
		"trace":            result.Trace,
	})
}

func (s *Server) handleBattles(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotFound, "battle store disabled")
		return
	}
	battles, err := s.store.ListBattles(50)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"battles": battles})
}

func (s *Server) handleBattle(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotFound, "battle store disabled")
		return
	}
	trace, err := s.store.GetTrace(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, trace)
}
