package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/charleschow/superleague-points/internal/config"
	"github.com/charleschow/superleague-points/internal/core/display"
	"github.com/charleschow/superleague-points/internal/core/scenario"
	"github.com/charleschow/superleague-points/internal/events"
	"github.com/charleschow/superleague-points/internal/store"
	"github.com/charleschow/superleague-points/internal/telemetry"
)

const (
	maxBodyBytes   = 64 << 10
	defaultHistory = 20
	maxHistory     = 500
)

// History is the read side of the scenario log.
type History interface {
	Recent(limit int) ([]store.Entry, error)
}

// ScenarioRequest is the body of POST /api/scenario.
type ScenarioRequest struct {
	Scenario string              `json:"scenario"`
	Batting  string              `json:"batting_first,omitempty"`
	Chasing  string              `json:"chasing,omitempty"`
	State    scenario.MatchState `json:"state"`
}

// ScenarioResponse flattens team names and the result into one object.
type ScenarioResponse struct {
	display.Teams
	scenario.Result
}

// Handler serves the scenario tables over HTTP and publishes every
// computation onto the bus.
//
// Routes:
//
//	POST /api/scenario        -> compute from a request body
//	GET  /api/presets         -> list presets
//	GET  /api/presets/{name}  -> compute a preset
//	GET  /api/history         -> recent logged computations (?limit=N)
//	GET  /api/metrics         -> counters snapshot
//	GET  /health              -> 200 OK
type Handler struct {
	bus     *events.Bus
	presets config.Presets
	limiter *rate.Limiter
	history History
	sf      singleflight.Group
}

func NewHandler(bus *events.Bus, presets config.Presets, limiter *rate.Limiter) *Handler {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &Handler{
		bus:     bus,
		presets: presets,
		limiter: limiter,
	}
}

// WithHistory enables /api/history. Without it the route returns 404.
func (h *Handler) WithHistory(hist History) *Handler {
	h.history = hist
	return h
}

// RegisterRoutes wires HTTP routes onto the provided mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/scenario", h.limited(h.handleScenario))
	mux.HandleFunc("GET /api/presets", h.handlePresets)
	mux.HandleFunc("GET /api/presets/{name}", h.limited(h.handlePreset))
	mux.HandleFunc("GET /api/history", h.handleHistory)
	mux.HandleFunc("GET /api/metrics", h.handleMetrics)
	mux.HandleFunc("GET /health", h.healthCheck)
}

func (h *Handler) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		telemetry.Metrics.RequestsReceived.Inc()
		if !h.limiter.Allow() {
			telemetry.Metrics.RateLimited.Inc()
			writeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}
		start := time.Now()
		next(w, r)
		telemetry.Metrics.RequestLatency.Record(time.Since(start))
	}
}

func (h *Handler) handleScenario(w http.ResponseWriter, r *http.Request) {
	var req ScenarioRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		telemetry.Metrics.RequestErrors.Inc()
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	kind, err := scenario.ParseKind(req.Scenario)
	if err == nil {
		err = req.State.Validate()
	}
	if err != nil {
		telemetry.Metrics.RequestErrors.Inc()
		writeError(w, http.StatusBadRequest, err)
		return
	}

	teams := display.Teams{Batting: req.Batting, Chasing: req.Chasing}
	res := h.compute("http", kind, req.State, teams)
	writeJSON(w, http.StatusOK, ScenarioResponse{Teams: teams, Result: res})
}

func (h *Handler) handlePresets(w http.ResponseWriter, _ *http.Request) {
	matches := h.presets.Matches
	if matches == nil {
		matches = []config.Preset{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"presets": matches})
}

func (h *Handler) handlePreset(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	p, ok := h.presets.ByName(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("preset %q not found", name))
		return
	}

	kind := p.Kind()
	if q := r.URL.Query().Get("scenario"); q != "" {
		k, err := scenario.ParseKind(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		kind = k
	}

	teams := display.Teams{Batting: p.Batting, Chasing: p.Chasing}
	res := h.compute("preset:"+p.Name, kind, p.State, teams)
	writeJSON(w, http.StatusOK, ScenarioResponse{Teams: teams, Result: res})
}

// compute coalesces identical in-flight requests, then publishes the
// result. Every caller gets its own event so watchers see each request.
func (h *Handler) compute(source string, kind scenario.Kind, ms scenario.MatchState, teams display.Teams) scenario.Result {
	key := fmt.Sprintf("%s|%+v", kind, ms)

	start := time.Now()
	v, _, shared := h.sf.Do(key, func() (any, error) {
		computeStart := time.Now()
		res := scenario.Generate(kind, ms)
		telemetry.Metrics.ComputeLatency.Record(time.Since(computeStart))
		telemetry.Metrics.ScenariosComputed.Inc()
		telemetry.Metrics.WinningRows.Add(int64(len(res.Winning)))
		telemetry.Metrics.LosingRows.Add(int64(len(res.Losing)))
		return res, nil
	})
	if shared {
		telemetry.Metrics.CoalescedRequests.Inc()
	}
	res := v.(scenario.Result)

	telemetry.Debugf("api: %s %s scenario  rows=%d  shared=%v", source, kind, res.Rows(), shared)

	h.bus.Publish(events.New(events.EventScenarioComputed, events.ScenarioComputedEvent{
		Source:   source,
		Batting:  teams.Batting,
		Chasing:  teams.Chasing,
		Result:   res,
		Duration: time.Since(start),
	}))
	return res
}

type historyEntry struct {
	EventID string          `json:"event_id"`
	Ts      time.Time       `json:"ts"`
	Source  string          `json:"source"`
	Batting string          `json:"batting_first,omitempty"`
	Chasing string          `json:"chasing,omitempty"`
	Result  scenario.Result `json:"result"`
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusNotFound, errors.New("scenario log disabled"))
		return
	}

	limit := defaultHistory
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", q))
			return
		}
		limit = min(n, maxHistory)
	}

	entries, err := h.history.Recent(limit)
	if err != nil {
		telemetry.Warnf("api: history: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]historyEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntry{
			EventID: e.EventID,
			Ts:      e.Ts,
			Source:  e.Source,
			Batting: e.Batting,
			Chasing: e.Chasing,
			Result:  e.Result,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

func (h *Handler) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, telemetry.Snapshot())
}

func (h *Handler) healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		telemetry.Warnf("api: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
