package ekf

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Innovations is a snapshot of the measurement-minus-prediction residuals
// from the last fusion steps.
type Innovations struct {
	Vel Vec3    `json:"vel"`
	Pos Vec3    `json:"pos"`
	Mag Vec3    `json:"mag"`
	Tas float64 `json:"tas"`
	Yaw float64 `json:"yaw"`
}

// Variances holds the square roots of the innovation consistency test
// ratios, the margin indication consumed by telemetry. A value of 1.0 sits
// exactly on the filter's rejection threshold.
type Variances struct {
	Vel float64 `json:"vel"`
	Pos float64 `json:"pos"`
	Hgt float64 `json:"hgt"`
	Mag Vec3    `json:"mag"`
	Tas float64 `json:"tas"`
}

// Quaternion returns the NED-to-body rotation of the output solution.
func (c *Core) Quaternion() quat.Number { return c.q }

// EulerAngles returns roll, pitch and yaw in radians, derived from the
// output quaternion with the aerospace (ZYX) rotation sequence.
func (c *Core) EulerAngles() (roll, pitch, yaw float64) {
	w, x, y, z := c.q.Real, c.q.Imag, c.q.Jmag, c.q.Kmag
	roll = math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
	pitch = math.Asin(2 * (w*y - z*x))
	yaw = math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	return roll, pitch, yaw
}

// VelNED returns the NED velocity of the body frame origin in m/s.
func (c *Core) VelNED() Vec3 { return c.s.VelNED }

// Wind returns the NE wind velocity estimate in m/s. The second return is
// false while wind state estimation is inhibited.
func (c *Core) Wind() (Vec2, bool) {
	return c.s.WindVel, !c.s.InhibitWind
}

// PosNE returns the NE position relative to the filter origin in metres.
// The second return is false when no position estimate is available: in
// constant position mode the filter states sit at the origin, so the last
// known position is returned instead.
func (c *Core) PosNE() (Vec2, bool) {
	if c.s.AidingMode != AidNone {
		return Vec2{X: c.s.PosNED.X, Y: c.s.PosNED.Y}, true
	}
	if c.s.OriginValid {
		return c.s.LastKnownPosNE, false
	}
	return Vec2{}, false
}

// PosD returns the down position relative to the filter origin in metres.
// A height estimate always exists regardless of aiding mode; the second
// return reports whether the vertical position solution is trustworthy.
func (c *Core) PosD() (float64, bool) {
	return c.s.PosNED.Z, c.s.Status.VertPos
}

// LLH returns the latitude, longitude and height of the current solution.
// The second return is false when the estimate should not be used for
// navigation (dead reckoning for too long, or no valid origin).
func (c *Core) LLH() (Location, bool) {
	if !c.s.OriginValid {
		return Location{}, false
	}
	origin := Location{Lat: c.s.OriginLat, Lon: c.s.OriginLon, Alt: c.s.OriginAlt}
	if c.s.AidingMode != AidNone {
		loc := origin.Offset(c.s.PosNED.X, c.s.PosNED.Y)
		loc.Alt = origin.Alt - c.s.PosNED.Z
		valid := c.s.Status.HorizPosAbs || c.s.Status.HorizPosRel
		return loc, valid
	}
	loc := origin.Offset(c.s.LastKnownPosNE.X, c.s.LastKnownPosNE.Y)
	return loc, false
}

// Innovations returns the innovation snapshot from the last fusion steps.
func (c *Core) Innovations() Innovations {
	return Innovations{
		Vel: c.s.VelInnov,
		Pos: c.s.PosInnov,
		Mag: c.s.MagInnov,
		Tas: c.s.TasInnov,
		Yaw: c.s.YawInnov,
	}
}

// Variances returns the innovation consistency margins. When simple yaw
// fusion is running instead of 3-axis magnetometer fusion, the yaw test
// ratio populates all three magnetometer components so consumers see an
// equivalent output.
func (c *Core) Variances() Variances {
	return Variances{
		Vel: math.Sqrt(c.s.VelTestRatio),
		Pos: math.Sqrt(c.s.PosTestRatio),
		Hgt: math.Sqrt(c.s.HgtTestRatio),
		Mag: Vec3{
			X: math.Sqrt(math.Max(c.s.MagTestRatio.X, c.s.YawTestRatio)),
			Y: math.Sqrt(math.Max(c.s.MagTestRatio.Y, c.s.YawTestRatio)),
			Z: math.Sqrt(math.Max(c.s.MagTestRatio.Z, c.s.YawTestRatio)),
		},
		Tas: math.Sqrt(c.s.TasTestRatio),
	}
}

// RngVar returns the normalised rangefinder innovation margin, or 0 when
// rangefinder aiding is not active. The gate prevents false alarms from a
// rangefinder fitted for other applications.
func (c *Core) RngVar() float64 {
	if !c.s.RngAidActive {
		return 0
	}
	return math.Sqrt(c.s.AuxRngTestRatio)
}
