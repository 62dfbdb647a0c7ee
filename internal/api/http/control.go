package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"lendstock-sync/internal/domain"
	"lendstock-sync/internal/jobs"
	"lendstock-sync/internal/logger"
	"lendstock-sync/internal/sync"
)

// ControlHandler exposes the local control API: trigger syncs in the
// foreground, evaluate reminders, and inspect per-family status. It binds to
// loopback; there is no auth on this surface.
type ControlHandler struct {
	runner *jobs.JobRunner
}

// NewControlHandler creates a control handler over the job runner's engines
func NewControlHandler(runner *jobs.JobRunner) *ControlHandler {
	return &ControlHandler{runner: runner}
}

type syncResponse struct {
	Results []familyResult `json:"results"`
}

type familyResult struct {
	Family     string `json:"family"`
	PushedOK   int    `json:"pushed_ok"`
	PushFailed int    `json:"push_failed"`
	Pulled     int    `json:"pulled"`
	Skipped    bool   `json:"skipped"`
	Error      string `json:"error,omitempty"`
}

type statusResponse struct {
	Families []familyStatus `json:"families"`
}

type familyStatus struct {
	Family     string        `json:"family"`
	Syncing    bool          `json:"syncing"`
	LastResult *familyResult `json:"last_result,omitempty"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}

// HandleFullSync runs push-then-pull across every family in order and
// reports each family's outcome. Runs in the foreground of the request.
func (h *ControlHandler) HandleFullSync(w http.ResponseWriter, r *http.Request) {
	var results []familyResult
	for _, engine := range h.runner.Engines().All() {
		results = append(results, h.runFamily(r, engine))
	}
	writeJSON(w, http.StatusOK, syncResponse{Results: results})
}

// HandleFamilySync runs push-then-pull for a single family
func (h *ControlHandler) HandleFamilySync(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["family"]
	engine := h.findEngine(name)
	if engine == nil {
		writeError(w, http.StatusNotFound, "unknown family: "+name)
		return
	}

	result, err := engine.PerformFullSync(r.Context(), h.runner.OwnerID())
	if errors.Is(err, sync.ErrInFlight) {
		writeError(w, http.StatusConflict, "sync already in progress for "+name)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toFamilyResult(engine.Family(), result))
}

// HandleEvaluateReminders fires due reminders immediately
func (h *ControlHandler) HandleEvaluateReminders(w http.ResponseWriter, r *http.Request) {
	fired, err := h.runner.Engines().Reminders.EvaluateDue(r.Context(), h.runner.OwnerID(), time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"fired": fired})
}

// HandleStatus reports in-flight state and the last result per family
func (h *ControlHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	var out statusResponse
	for _, engine := range h.runner.Engines().All() {
		st := familyStatus{
			Family:  engine.Family(),
			Syncing: engine.IsSyncing(),
		}
		last := engine.LastResult()
		if !last.FinishedAt.IsZero() {
			fr := toFamilyResult(engine.Family(), last)
			st.LastResult = &fr
			st.FinishedAt = &last.FinishedAt
		}
		out.Families = append(out.Families, st)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ControlHandler) runFamily(r *http.Request, engine sync.Engine) familyResult {
	result, err := engine.PerformFullSync(r.Context(), h.runner.OwnerID())
	fr := toFamilyResult(engine.Family(), result)
	if errors.Is(err, sync.ErrInFlight) {
		fr.Error = "sync already in progress"
	} else if err != nil {
		fr.Error = err.Error()
	}
	return fr
}

func (h *ControlHandler) findEngine(name string) sync.Engine {
	for _, engine := range h.runner.Engines().All() {
		if engine.Family() == name {
			return engine
		}
	}
	return nil
}

func toFamilyResult(family string, r domain.SyncResult) familyResult {
	return familyResult{
		Family:     family,
		PushedOK:   r.Pushed.Succeeded,
		PushFailed: r.Pushed.Failed,
		Pulled:     r.Pulled,
		Skipped:    r.Skipped,
		Error:      r.FirstError,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// RegisterControlRoutes registers the control API endpoints
func RegisterControlRoutes(router *mux.Router, runner *jobs.JobRunner) {
	handler := NewControlHandler(runner)
	router.HandleFunc("/v1/sync", handler.HandleFullSync).Methods("POST")
	router.HandleFunc("/v1/sync/{family}", handler.HandleFamilySync).Methods("POST")
	router.HandleFunc("/v1/status", handler.HandleStatus).Methods("GET")
	router.HandleFunc("/v1/reminders/evaluate", handler.HandleEvaluateReminders).Methods("POST")
}
