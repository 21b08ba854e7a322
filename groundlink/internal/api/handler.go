// Package api serves the groundlink JSON endpoints consumed by the console
// UI and by other ground tools.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/navlane/navlane/groundlink/internal/store"
	"github.com/navlane/navlane/pkg/wire"
)

// AlertCounter reports how many alerts are currently firing. Implemented by
// the alert engine; a nil counter reads as zero.
type AlertCounter interface {
	ActiveCount() int
}

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It reads lane state from the report store and returns JSON responses.
type Handler struct {
	store  *store.Store
	alerts AlertCounter
	mux    *http.ServeMux
}

// New creates a Handler wired to the given report store and registers all
// routes. alerts may be nil.
func New(st *store.Store, alerts AlertCounter) http.Handler {
	h := &Handler{store: st, alerts: alerts, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/status", h.status)
	h.mux.HandleFunc("/api/v1/lanes", h.listLanes)
	h.mux.HandleFunc("/api/v1/lanes/", h.getLane) // subtree, extracts {id}
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// status returns GET /api/v1/status: the fleet-level summary.
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	resp := StatusResponse{LaneCount: len(entries)}
	if h.alerts != nil {
		resp.AlertCount = h.alerts.ActiveCount()
	}

	if len(entries) == 0 {
		resp.State = "unknown"
		jsonResp(w, http.StatusOK, resp)
		return
	}

	for _, e := range entries {
		if e.Report.Healthy {
			resp.HealthyCount++
		} else {
			resp.UnhealthyCount++
		}
		if e.Report.Primary {
			resp.PrimaryLane = e.Report.LaneID
		}
		if e.Report.ErrorScore > resp.WorstScore {
			resp.WorstScore = e.Report.ErrorScore
		}
	}

	switch {
	case resp.HealthyCount == 0:
		resp.State = "critical"
	case resp.UnhealthyCount > 0 || resp.WorstScore >= 1.0:
		resp.State = "degraded"
	default:
		resp.State = "nominal"
	}
	jsonResp(w, http.StatusOK, resp)
}

// listLanes returns GET /api/v1/lanes: all live lanes.
func (h *Handler) listLanes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	out := make([]LaneResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLaneResponse(e))
	}
	jsonResp(w, http.StatusOK, out)
}

// getLane returns GET /api/v1/lanes/{id}: a single live lane.
func (h *Handler) getLane(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/lanes/")
	if id == "" {
		h.listLanes(w, r)
		return
	}

	e, ok := h.store.Get(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "lane not found")
		return
	}
	// Exclude stale entries: treat them as not found.
	if time.Since(e.UpdatedAt) > h.store.TTL() {
		jsonErr(w, http.StatusNotFound, "lane not found")
		return
	}

	jsonResp(w, http.StatusOK, toLaneResponse(e))
}

// snapshot returns GET /api/v1/snapshot: a full dump of all live lanes.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BuildSnapshot(h.store))
}

// BuildSnapshot assembles the full lane snapshot. Shared with the websocket
// hub so the HTTP and streaming views never diverge.
func BuildSnapshot(st *store.Store) SnapshotResponse {
	entries := st.List()
	snap := SnapshotResponse{
		Lanes:       make([]LaneResponse, 0, len(entries)),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for _, e := range entries {
		lr := toLaneResponse(e)
		snap.Lanes = append(snap.Lanes, lr)
		if lr.Primary {
			snap.PrimaryLane = lr.LaneID
		}
	}
	return snap
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// toLaneResponse maps a store.Entry to its JSON representation.
func toLaneResponse(e *store.Entry) LaneResponse {
	rep := e.Report
	return LaneResponse{
		LaneID:     rep.LaneID,
		Primary:    rep.Primary,
		Healthy:    rep.Healthy,
		ErrorScore: rep.ErrorScore,

		Flags:     rep.Flags,
		Faults:    rep.Faults,
		GpsChecks: rep.GpsChecks,

		FaultNames:    wire.FaultNames(rep.Faults),
		GpsCheckNames: wire.GpsCheckNames(rep.GpsChecks),

		VelVar:  rep.VelVar,
		PosVar:  rep.PosVar,
		HgtVar:  rep.HgtVar,
		MagVar:  rep.MagVar,
		TasVar:  rep.TasVar,
		TerrVar: rep.TerrVar,

		Roll:  rep.Roll,
		Pitch: rep.Pitch,
		Yaw:   rep.Yaw,
		VelN:  rep.VelN,
		VelE:  rep.VelE,
		VelD:  rep.VelD,

		Lat:      rep.Lat,
		Lon:      rep.Lon,
		Alt:      rep.Alt,
		PosValid: rep.PosValid,

		ErrorMessage: rep.ErrorMessage,
		Diagnostics:  computeDiagnostics(rep),
		LastSeen:     e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
