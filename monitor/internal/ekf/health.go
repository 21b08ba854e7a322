package ekf

import (
	"math"

	"github.com/navlane/navlane/pkg/wire"
	"gonum.org/v1/gonum/num/quat"
)

const (
	// settleTimeMS is the grace period after filter start during which the
	// lane is never reported healthy, so the arbiter cannot select a filter
	// that has not converged yet.
	settleTimeMS = 1000

	// staticInnovLimit bounds the position and height innovations allowed
	// while on ground with no aiding. Any larger departure from zero marks
	// a drifting solution that no external reference would otherwise catch.
	staticInnovLimit = 1.0

	// gpsScoreScale averages the two horizontal-motion consistency metrics
	// into one GPS channel contribution.
	gpsScoreScale = 0.5

	// sensitivityScale damps the airspeed and magnetometer channels so
	// transient events (wind gusts, local field disturbances) do not produce
	// spurious lane switches.
	sensitivityScale = 0.3
)

// FilterFaults returns the consolidated fault bitmask. The quaternion and
// velocity NaN checks are explicit predicates here rather than relying on
// NaN propagation through the ratio comparisons, which IEEE-754 evaluates
// false. Pure function of the current sample; always succeeds.
func (c *Core) FilterFaults() uint16 {
	var m uint16
	if quat.IsNaN(c.q) {
		m |= wire.FaultQuatNaN
	}
	if c.s.VelNED.IsNaN() {
		m |= wire.FaultVelNaN
	}
	if c.s.Faults.BadXMag {
		m |= wire.FaultBadXMag
	}
	if c.s.Faults.BadYMag {
		m |= wire.FaultBadYMag
	}
	if c.s.Faults.BadZMag {
		m |= wire.FaultBadZMag
	}
	if c.s.Faults.BadAirspeed {
		m |= wire.FaultBadAirspeed
	}
	if c.s.Faults.BadSideslip {
		m |= wire.FaultBadSideslip
	}
	if !c.s.StatesInitialised {
		m |= wire.FaultNotInitialised
	}
	return m
}

// Healthy returns the consolidated health status used as the hard selection
// gate: an unhealthy lane must never be chosen as primary.
func (c *Core) Healthy() bool {
	if c.FilterFaults() != 0 {
		return false
	}
	if c.s.VelTestRatio > 1 && c.s.PosTestRatio > 1 && c.s.HgtTestRatio > 1 {
		// Any single ratio above 1 is tolerable noise; all three at once
		// means the filter is diverging, not a single-sensor glitch.
		return false
	}
	// Give the filter a second to settle before use.
	if c.s.ImuSampleMS-c.s.StartMS < settleTimeMS {
		return false
	}
	// Position and height innovations must be within limits when on ground
	// in a static mode of operation.
	horizErrSq := sq(c.s.PosInnovNE.X) + sq(c.s.PosInnovNE.Y)
	if c.s.OnGround && c.s.AidingMode == AidNone &&
		(horizErrSq > staticInnovLimit || math.Abs(c.s.HgtInnovFilt) > staticInnovLimit) {
		return false
	}
	return true
}

// ErrorScore returns the consolidated error score used to rank healthy
// lanes; higher numbers represent larger errors. The score is the single
// worst-performing channel, not a sum: a lane is penalised for its worst
// weakness rather than rewarded for being mediocre everywhere.
//
// An unaligned filter scores exactly 0. Callers must gate on Healthy before
// ranking; see the arbiter.
func (c *Core) ErrorScore() float64 {
	score := 0.0
	if !c.Aligned() {
		return score
	}
	// GPS fusion performance.
	score = math.Max(score, gpsScoreScale*(c.s.VelTestRatio+c.s.PosTestRatio))
	// Altimeter fusion performance.
	score = math.Max(score, c.s.HgtTestRatio)
	// Airspeed fusion performance counts only when at least two airspeed sensors
	// are fitted so switching lanes can actually reach a better one, and only
	// for a forward-flight vehicle.
	if c.reg.AssumeZeroSideslip() &&
		c.reg.AirspeedSensorCount() >= 2 && c.reg.AirspeedAffinity() {
		score = math.Max(score, sensitivityScale*c.s.TasTestRatio)
	}
	// Magnetometer fusion performance counts when magnetometer affinity
	// overrides the inherent compass switching mechanism.
	if c.reg.MagAffinity() {
		score = math.Max(score, sensitivityScale*(c.s.MagTestRatio.X+c.s.MagTestRatio.Y+c.s.MagTestRatio.Z))
	}
	return score
}

// FilterStatus returns the solution status flags by value.
func (c *Core) FilterStatus() StatusFlags { return c.s.Status }

// FilterGpsStatus returns the GPS pre-use check results by value.
func (c *Core) FilterGpsStatus() GpsCheckFlags { return c.s.GpsChecks }

func sq(v float64) float64 { return v * v }
