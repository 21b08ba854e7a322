// Package receiver accepts report batches from navlane-monitor instances.
package receiver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/navlane/navlane/groundlink/internal/store"
	"github.com/navlane/navlane/pkg/wire"
)

// maxBodyBytes bounds the ingest request body. A full batch of lane reports
// is a few kilobytes; anything near this limit is a misbehaving client.
const maxBodyBytes = 4 << 20

// Evaluator is notified of every accepted report. The alert engine
// implements it.
type Evaluator interface {
	Evaluate(rep wire.StatusReport)
}

// Receiver handles POST /ingest/v1/reports. It validates each incoming
// report and stores it in the lane store. Authentication is enforced by
// middleware before requests reach this handler.
type Receiver struct {
	store *store.Store
	eval  Evaluator
	mux   *http.ServeMux
}

// New creates a Receiver that writes accepted reports to st.
// eval may be nil when alerting is disabled.
func New(st *store.Store, eval Evaluator) http.Handler {
	r := &Receiver{store: st, eval: eval, mux: http.NewServeMux()}
	r.mux.HandleFunc("/ingest/v1/reports", r.ingest)
	return r
}

func (r *Receiver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// ingest decodes a ReportBatch and stores every report carrying a lane ID.
// Reports without a lane ID are skipped, not fatal: one malformed report
// must not cost the batch.
func (r *Receiver) ingest(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		httpErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var batch wire.ReportBatch
	body := io.LimitReader(req.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&batch); err != nil {
		httpErr(w, http.StatusBadRequest, "invalid report batch: "+err.Error())
		return
	}

	accepted := 0
	for _, rep := range batch.Reports {
		if rep.LaneID == "" {
			slog.Warn("receiver: skipping report without lane_id")
			continue
		}
		r.store.Put(rep)
		if r.eval != nil {
			r.eval.Evaluate(rep)
		}
		accepted++

		slog.Debug("receiver: report stored",
			"lane_id", rep.LaneID,
			"primary", rep.Primary,
			"healthy", rep.Healthy,
			"score", rep.ErrorScore,
		)
	}

	resp := wire.IngestResponse{Accepted: accepted}
	if accepted < len(batch.Reports) {
		resp.Message = "some reports were missing lane_id"
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

func httpErr(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg}) //nolint:errcheck
}
