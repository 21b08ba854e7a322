package uplink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/navlane/navlane/monitor/internal/config"
	"github.com/navlane/navlane/pkg/wire"
)

func testCfg(endpoint string, bufSize int) config.MonitorConfig {
	return config.MonitorConfig{
		GroundlinkEndpoint: endpoint,
		BufferSize:         bufSize,
	}
}

func report(lane string) wire.StatusReport {
	return wire.StatusReport{LaneID: lane, Healthy: true, SentAt: time.Now().UTC()}
}

func TestShip_EvictsOldestWhenFull(t *testing.T) {
	u, err := New(testCfg("http://unused", 2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	u.Ship(report("lane0"))
	u.Ship(report("lane1"))
	u.Ship(report("lane2")) // evicts lane0

	got := []string{(<-u.buf).LaneID, (<-u.buf).LaneID}
	if got[0] != "lane1" || got[1] != "lane2" {
		t.Errorf("buffer after eviction: %v, want [lane1 lane2]", got)
	}
}

func TestRun_DeliversBatch(t *testing.T) {
	received := make(chan wire.ReportBatch, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ingestPath {
			t.Errorf("path = %q, want %q", r.URL.Path, ingestPath)
		}
		var batch wire.ReportBatch
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			t.Errorf("decode batch: %v", err)
		}
		received <- batch
		json.NewEncoder(w).Encode(wire.IngestResponse{Accepted: len(batch.Reports)})
	}))
	defer srv.Close()

	u, err := New(testCfg(srv.URL, 10))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	u.Ship(report("lane0"))
	u.Ship(report("lane1"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go u.Run(ctx)

	select {
	case batch := <-received:
		if len(batch.Reports) != 2 {
			t.Fatalf("batch size = %d, want 2", len(batch.Reports))
		}
		if batch.Reports[0].LaneID != "lane0" || batch.Reports[1].LaneID != "lane1" {
			t.Errorf("batch order: %q, %q", batch.Reports[0].LaneID, batch.Reports[1].LaneID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no batch delivered")
	}
}

func TestRun_SendsAPIKey(t *testing.T) {
	t.Setenv("GL_KEY", "k3y")
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get("X-Groundlink-Key")
		json.NewEncoder(w).Encode(wire.IngestResponse{Accepted: 1})
	}))
	defer srv.Close()

	cfg := testCfg(srv.URL, 10)
	cfg.GroundlinkAuth = config.AuthConfig{Mode: "apikey", Header: "X-Groundlink-Key", KeyEnv: "GL_KEY"}
	u, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	u.Ship(report("lane0"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go u.Run(ctx)

	select {
	case key := <-got:
		if key != "k3y" {
			t.Errorf("api key header: got %q", key)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no request received")
	}
}

func TestRun_PermanentErrorDiscardsBatch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	u, err := New(testCfg(srv.URL, 10))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	u.Ship(report("lane0"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go u.Run(ctx)

	// The rejected batch must not be retried: exactly one request.
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("requests = %d, want 1 (discard on 401)", n)
	}
	if len(u.buf) != 0 {
		t.Errorf("buffer length = %d, want 0 after discard", len(u.buf))
	}
}

func TestRun_TransientErrorRetries(t *testing.T) {
	var calls atomic.Int32
	delivered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(wire.IngestResponse{Accepted: 1})
		close(delivered)
	}))
	defer srv.Close()

	u, err := New(testCfg(srv.URL, 10))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	u.Ship(report("lane0"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go u.Run(ctx)

	select {
	case <-delivered:
	case <-time.After(5 * time.Second):
		t.Fatal("batch was not retried after a transient failure")
	}
}

func TestBackoff_GrowsAndCaps(t *testing.T) {
	bo := newBackoff()
	prev := time.Duration(0)
	for i := 0; i < 10; i++ {
		d := bo.next()
		// Jitter is ±25 %, so each value stays within bounds of its base.
		if d > backoffMax+backoffMax/4 {
			t.Fatalf("backoff %v exceeded cap", d)
		}
		if i > 0 && d < prev/4 {
			t.Fatalf("backoff shrank unexpectedly: %v after %v", d, prev)
		}
		prev = d
	}
	bo.reset()
	if d := bo.next(); d > backoffInitial+backoffInitial/4 {
		t.Errorf("backoff after reset = %v, want near %v", d, backoffInitial)
	}
}
