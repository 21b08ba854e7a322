package api

import (
	"fmt"
	"strings"

	"github.com/navlane/navlane/pkg/wire"
)

// DiagnosticHint is one human-readable insight about a lane's condition.
// The console shows these as chips on the lane card; clicking one shows
// Detail, written in plain English for an operator under time pressure.
type DiagnosticHint struct {
	// Key is a stable machine-readable identifier (used for dedup/ordering).
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical"
	Level string `json:"level"`
	// Title is a short label shown on the chip.
	Title string `json:"title"`
	// Detail is the full explanation shown on click/hover.
	Detail string `json:"detail"`
	// Value is an optional numeric value associated with this hint.
	Value *float64 `json:"value,omitempty"`
}

// computeDiagnostics derives diagnostic hints from a lane report.
// Hints are ordered: critical first, then warnings, then info.
func computeDiagnostics(rep wire.StatusReport) []DiagnosticHint {
	var hints []DiagnosticHint

	if rep.ErrorMessage != "" {
		hints = append(hints, DiagnosticHint{
			Key:   "fetch_failed",
			Level: "critical",
			Title: "Can't reach lane",
			Detail: fmt.Sprintf(
				"The monitor couldn't collect state from this lane. It last tried and got: %q. "+
					"Everything shown for this lane is the last sample before contact was lost. "+
					"Check the estimator process and the link between it and the monitor.",
				rep.ErrorMessage,
			),
		})
		return hints // the rest of the report describes stale data
	}

	if rep.Faults&wire.FaultNotInitialised != 0 {
		hints = append(hints, DiagnosticHint{
			Key:   "not_initialised",
			Level: "info",
			Title: "Initialising",
			Detail: "This lane's filter has not completed its initial alignment yet. " +
				"It will stay unhealthy and unselectable until tilt and yaw alignment " +
				"finish, typically a few seconds after the IMU settles. No action " +
				"needed unless it stays in this state.",
		})
		return hints
	}

	if rep.Faults&(wire.FaultQuatNaN|wire.FaultVelNaN) != 0 {
		hints = append(hints, DiagnosticHint{
			Key:   "numeric_fault",
			Level: "critical",
			Title: "Numerical fault",
			Detail: "Core filter states have gone NaN on this lane. The lane cannot " +
				"recover on its own and will never report healthy again until the " +
				"filter restarts. The arbiter has already stopped considering it; " +
				"investigate the estimator logs for the divergence that preceded this.",
		})
	}

	if names := fusionFaults(rep.Faults); len(names) > 0 {
		hints = append(hints, DiagnosticHint{
			Key:   "fusion_fault",
			Level: "warning",
			Title: "Fusion conditioning fault",
			Detail: fmt.Sprintf(
				"Badly conditioned fusion on: %s. This happens when an innovation "+
					"variance is close to singular, usually after an abrupt sensor "+
					"change. It clears on the next healthy fusion step for that "+
					"channel; a lane that stays in this state has a sensor problem.",
				strings.Join(names, ", "),
			),
		})
	}

	hints = append(hints, scoreHints(rep)...)

	if rep.GpsChecks != 0 {
		names := wire.GpsCheckNames(rep.GpsChecks)
		hints = append(hints, DiagnosticHint{
			Key:   "gps_checks",
			Level: "warning",
			Title: "GPS pre-flight checks failing",
			Detail: fmt.Sprintf(
				"The estimator is refusing to use GPS because these checks fail: %s. "+
					"On the ground this usually means poor sky view or a receiver still "+
					"converging. The lane cannot enter absolute aiding until the checks "+
					"pass.",
				strings.Join(names, ", "),
			),
		})
	}

	if rep.Flags&wire.FlagGpsGlitching != 0 {
		hints = append(hints, DiagnosticHint{
			Key:   "gps_glitching",
			Level: "warning",
			Title: "GPS glitching",
			Detail: "The GPS input is jumping in a way inconsistent with the inertial " +
				"solution, and the estimator is holding it at arm's length. Position " +
				"output stays usable on inertial data in the short term. Watch whether " +
				"this clears; persistent glitching near structures is usually multipath.",
		})
	}

	if rep.Flags&wire.FlagConstPosMode != 0 {
		hints = append(hints, DiagnosticHint{
			Key:   "const_pos",
			Level: "info",
			Title: "No aiding",
			Detail: "This lane has no position reference and is holding a constant " +
				"position. Attitude and height remain valid; horizontal position " +
				"does not. Expected indoors or before GPS lock.",
		})
	}

	if !rep.Healthy && len(hints) == 0 {
		hints = append(hints, DiagnosticHint{
			Key:   "unhealthy",
			Level: "warning",
			Title: "Lane unhealthy",
			Detail: "The lane failed its composite health check without a specific " +
				"fault flag set. Most often this is the post-start settle window " +
				"or the on-ground static innovation check catching movement while " +
				"the vehicle is supposedly stationary.",
		})
	}

	if len(hints) == 0 {
		score := rep.ErrorScore
		hints = append(hints, DiagnosticHint{
			Key:   "nominal",
			Level: "ok",
			Title: "All clear",
			Detail: fmt.Sprintf(
				"This lane is healthy with an error score of %.2f. Scores stay "+
					"below 1.0 in normal operation; the arbiter switches lanes on "+
					"sustained score differences, not single spikes.",
				score,
			),
			Value: &score,
		})
	}

	return hints
}

// scoreHints grades the error score and the per-channel innovation margins.
func scoreHints(rep wire.StatusReport) []DiagnosticHint {
	var hints []DiagnosticHint

	if rep.ErrorScore >= 1.0 {
		v := rep.ErrorScore
		hints = append(hints, DiagnosticHint{
			Key:   "score_critical",
			Level: "critical",
			Title: fmt.Sprintf("Error score %.2f", v),
			Detail: "At least one measurement channel is past the filter's own " +
				"rejection threshold; the worst channel drives this number. " +
				"Expect the arbiter to prefer another lane if one is available. " +
				"The channel hints below say which sensor is responsible.",
			Value: &v,
		})
	} else if rep.ErrorScore >= 0.5 {
		v := rep.ErrorScore
		hints = append(hints, DiagnosticHint{
			Key:   "score_elevated",
			Level: "warning",
			Title: fmt.Sprintf("Error score %.2f", v),
			Detail: "Innovations are running higher than normal but still inside " +
				"the rejection gate. Worth watching; a slow climb usually precedes " +
				"a sensor failure, a spike usually follows a manoeuvre.",
			Value: &v,
		})
	}

	channel := func(key, name string, v float64) {
		if v < 1.0 {
			return
		}
		val := v
		hints = append(hints, DiagnosticHint{
			Key:   "channel_" + key,
			Level: "warning",
			Title: name + " innovations high",
			Detail: fmt.Sprintf(
				"The %s channel's normalised innovation is %.2f; at 1.0 the filter "+
					"starts rejecting the measurement. Compare this lane against the "+
					"others: one lane high points at that lane's sensor, all lanes "+
					"high points at the shared environment.",
				strings.ToLower(name), v,
			),
			Value: &val,
		})
	}
	channel("vel", "Velocity", rep.VelVar)
	channel("pos", "Position", rep.PosVar)
	channel("hgt", "Height", rep.HgtVar)
	channel("mag", "Compass", rep.MagVar)
	channel("tas", "Airspeed", rep.TasVar)

	return hints
}

// fusionFaults lists the conditioning fault names set in mask, excluding the
// NaN and initialisation bits handled separately.
func fusionFaults(mask uint16) []string {
	mask &= wire.FaultBadXMag | wire.FaultBadYMag | wire.FaultBadZMag |
		wire.FaultBadAirspeed | wire.FaultBadSideslip
	return wire.FaultNames(mask)
}
