package wire

import (
	"reflect"
	"testing"
)

// The bit positions below are decoded by existing ground-station tooling.
// These tests pin them so a refactor cannot silently renumber the layout.

func TestFaultBitLayout(t *testing.T) {
	tests := []struct {
		bit  uint16
		want uint16
	}{
		{FaultQuatNaN, 1 << 0},
		{FaultVelNaN, 1 << 1},
		{FaultBadXMag, 1 << 2},
		{FaultBadYMag, 1 << 3},
		{FaultBadZMag, 1 << 4},
		{FaultBadAirspeed, 1 << 5},
		{FaultBadSideslip, 1 << 6},
		{FaultNotInitialised, 1 << 7},
	}
	for _, tc := range tests {
		if tc.bit != tc.want {
			t.Errorf("fault bit = %#x, want %#x", tc.bit, tc.want)
		}
	}
}

func TestStatusFlagLayout(t *testing.T) {
	tests := []struct {
		bit  uint16
		want uint16
	}{
		{FlagAttitude, 1 << 0},
		{FlagVelocityHoriz, 1 << 1},
		{FlagVelocityVert, 1 << 2},
		{FlagPosHorizRel, 1 << 3},
		{FlagPosHorizAbs, 1 << 4},
		{FlagPosVertAbs, 1 << 5},
		{FlagPosVertAGL, 1 << 6},
		{FlagConstPosMode, 1 << 7},
		{FlagPredPosHorizRel, 1 << 8},
		{FlagPredPosHorizAbs, 1 << 9},
		{FlagUninitialized, 1 << 10},
		{FlagGpsGlitching, 1 << 15},
	}
	for _, tc := range tests {
		if tc.bit != tc.want {
			t.Errorf("status flag = %#x, want %#x", tc.bit, tc.want)
		}
	}
}

func TestFaultNames(t *testing.T) {
	mask := FaultQuatNaN | FaultBadYMag | FaultNotInitialised
	got := FaultNames(mask)
	want := []string{"quat_nan", "bad_ymag", "not_initialised"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FaultNames(%#x) = %v, want %v", mask, got, want)
	}
}

func TestFaultNames_Empty(t *testing.T) {
	if got := FaultNames(0); got != nil {
		t.Errorf("FaultNames(0) = %v, want nil", got)
	}
}

func TestGpsCheckNames(t *testing.T) {
	mask := GpsBadSatCount | GpsBadFix
	got := GpsCheckNames(mask)
	want := []string{"bad_sat_count", "bad_fix"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GpsCheckNames(%#x) = %v, want %v", mask, got, want)
	}
}
