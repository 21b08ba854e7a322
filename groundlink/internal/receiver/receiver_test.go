package receiver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/navlane/navlane/groundlink/internal/store"
	"github.com/navlane/navlane/pkg/wire"
)

type recordingEvaluator struct {
	seen []string
}

func (r *recordingEvaluator) Evaluate(rep wire.StatusReport) {
	r.seen = append(r.seen, rep.LaneID)
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ingest/v1/reports", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIngest_StoresReports(t *testing.T) {
	st := store.New(5 * time.Second)
	h := New(st, nil)

	rec := post(t, h, `{"reports":[
		{"lane_id":"lane0","healthy":true,"primary":true},
		{"lane_id":"lane1","healthy":false,"error_score":1.2}
	]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp wire.IngestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Accepted != 2 {
		t.Errorf("Accepted = %d, want 2", resp.Accepted)
	}

	e, ok := st.Get("lane1")
	if !ok {
		t.Fatal("lane1 not stored")
	}
	if e.Report.ErrorScore != 1.2 {
		t.Errorf("stored score = %v, want 1.2", e.Report.ErrorScore)
	}
}

func TestIngest_EvaluatesAcceptedReports(t *testing.T) {
	st := store.New(5 * time.Second)
	eval := &recordingEvaluator{}

	rec := post(t, New(st, eval), `{"reports":[
		{"lane_id":"lane0"},
		{"healthy":true},
		{"lane_id":"lane1"}
	]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(eval.seen) != 2 {
		t.Fatalf("evaluated %d reports, want 2", len(eval.seen))
	}
	if eval.seen[0] != "lane0" || eval.seen[1] != "lane1" {
		t.Errorf("evaluated lanes = %v, want [lane0 lane1]", eval.seen)
	}
}

func TestIngest_SkipsReportsWithoutLaneID(t *testing.T) {
	st := store.New(5 * time.Second)
	rec := post(t, New(st, nil), `{"reports":[
		{"lane_id":"lane0"},
		{"healthy":true}
	]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp wire.IngestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Accepted != 1 {
		t.Errorf("Accepted = %d, want 1", resp.Accepted)
	}
	if resp.Message == "" {
		t.Error("expected a partial-acceptance message")
	}
	if st.Count() != 1 {
		t.Errorf("store count = %d, want 1", st.Count())
	}
}

func TestIngest_RejectsInvalidJSON(t *testing.T) {
	rec := post(t, New(store.New(5*time.Second), nil), `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestIngest_RejectsGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ingest/v1/reports", nil)
	rec := httptest.NewRecorder()
	New(store.New(5*time.Second), nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
