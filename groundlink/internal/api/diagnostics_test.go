package api

import (
	"strings"
	"testing"

	"github.com/navlane/navlane/pkg/wire"
)

func hintKeys(hints []DiagnosticHint) []string {
	keys := make([]string, len(hints))
	for i, h := range hints {
		keys[i] = h.Key
	}
	return keys
}

func hasHint(hints []DiagnosticHint, key, level string) bool {
	for _, h := range hints {
		if h.Key == key && h.Level == level {
			return true
		}
	}
	return false
}

func TestDiagnostics_FetchFailureShortCircuits(t *testing.T) {
	rep := wire.StatusReport{
		LaneID:       "lane0",
		ErrorMessage: "dial tcp: connection refused",
		Faults:       wire.FaultQuatNaN, // stale data, must not produce extra hints
	}
	hints := computeDiagnostics(rep)
	if len(hints) != 1 || hints[0].Key != "fetch_failed" || hints[0].Level != "critical" {
		t.Errorf("hints = %v", hintKeys(hints))
	}
}

func TestDiagnostics_NotInitialisedShortCircuits(t *testing.T) {
	rep := wire.StatusReport{Faults: wire.FaultNotInitialised}
	hints := computeDiagnostics(rep)
	if len(hints) != 1 || hints[0].Key != "not_initialised" || hints[0].Level != "info" {
		t.Errorf("hints = %v", hintKeys(hints))
	}
}

func TestDiagnostics_NaNIsCritical(t *testing.T) {
	rep := wire.StatusReport{Faults: wire.FaultVelNaN}
	if !hasHint(computeDiagnostics(rep), "numeric_fault", "critical") {
		t.Error("expected critical numeric_fault hint")
	}
}

func TestDiagnostics_FusionFaultNames(t *testing.T) {
	rep := wire.StatusReport{Healthy: true, Faults: wire.FaultBadYMag | wire.FaultBadSideslip}
	hints := computeDiagnostics(rep)
	if !hasHint(hints, "fusion_fault", "warning") {
		t.Fatalf("hints = %v", hintKeys(hints))
	}
	for _, h := range hints {
		if h.Key == "fusion_fault" {
			if !strings.Contains(h.Detail, "bad_ymag") || !strings.Contains(h.Detail, "bad_sideslip") {
				t.Errorf("fusion fault detail missing names: %q", h.Detail)
			}
		}
	}
}

func TestDiagnostics_ScoreGrading(t *testing.T) {
	tests := []struct {
		score float64
		key   string
		level string
	}{
		{1.5, "score_critical", "critical"},
		{0.7, "score_elevated", "warning"},
	}
	for _, tc := range tests {
		rep := wire.StatusReport{Healthy: true, ErrorScore: tc.score}
		if !hasHint(computeDiagnostics(rep), tc.key, tc.level) {
			t.Errorf("score %v: expected %s/%s, got %v",
				tc.score, tc.key, tc.level, hintKeys(computeDiagnostics(rep)))
		}
	}
}

func TestDiagnostics_ChannelHints(t *testing.T) {
	rep := wire.StatusReport{Healthy: true, MagVar: 1.4, HgtVar: 0.3}
	hints := computeDiagnostics(rep)
	if !hasHint(hints, "channel_mag", "warning") {
		t.Errorf("expected compass channel hint, got %v", hintKeys(hints))
	}
	if hasHint(hints, "channel_hgt", "warning") {
		t.Error("height channel below threshold must not produce a hint")
	}
}

func TestDiagnostics_GpsChecks(t *testing.T) {
	rep := wire.StatusReport{Healthy: true, GpsChecks: wire.GpsBadHDoP | wire.GpsBadSatCount}
	hints := computeDiagnostics(rep)
	if !hasHint(hints, "gps_checks", "warning") {
		t.Fatalf("hints = %v", hintKeys(hints))
	}
}

func TestDiagnostics_GpsGlitching(t *testing.T) {
	rep := wire.StatusReport{Healthy: true, Flags: wire.FlagGpsGlitching}
	if !hasHint(computeDiagnostics(rep), "gps_glitching", "warning") {
		t.Error("expected gps_glitching hint")
	}
}

func TestDiagnostics_ConstPosMode(t *testing.T) {
	rep := wire.StatusReport{Healthy: true, Flags: wire.FlagConstPosMode}
	if !hasHint(computeDiagnostics(rep), "const_pos", "info") {
		t.Error("expected const_pos hint")
	}
}

func TestDiagnostics_UnhealthyFallback(t *testing.T) {
	rep := wire.StatusReport{Healthy: false}
	hints := computeDiagnostics(rep)
	if !hasHint(hints, "unhealthy", "warning") {
		t.Errorf("hints = %v", hintKeys(hints))
	}
}

func TestDiagnostics_AllClear(t *testing.T) {
	rep := wire.StatusReport{Healthy: true, ErrorScore: 0.1}
	hints := computeDiagnostics(rep)
	if len(hints) != 1 || hints[0].Key != "nominal" || hints[0].Level != "ok" {
		t.Errorf("hints = %v", hintKeys(hints))
	}
}
