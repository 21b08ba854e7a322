package telemetry

import (
	"math"
	"time"

	"github.com/navlane/navlane/monitor/internal/ekf"
	"github.com/navlane/navlane/pkg/wire"
)

// BuildReport consolidates one lane's current state into a StatusReport.
//
// fetchErr, when non-nil, marks the report as describing the last known
// sample rather than fresh state. The health and score fields still reflect
// that stale sample; the arbiter's staleness gate handles the selection
// consequence, the groundlink only needs to display the condition.
func BuildReport(laneID string, c *ekf.Core, primary bool, fetchErr error, now time.Time) wire.StatusReport {
	r := wire.StatusReport{
		LaneID:  laneID,
		Primary: primary,

		Healthy:    c.Healthy(),
		ErrorScore: c.ErrorScore(),

		Flags:     c.FilterStatus().Bitmask(),
		Faults:    c.FilterFaults(),
		GpsChecks: c.FilterGpsStatus().Bitmask(),

		SentAt: now,
	}

	v := c.Variances()
	r.VelVar = v.Vel
	r.PosVar = v.Pos
	r.HgtVar = v.Hgt
	r.MagVar = math.Max(v.Mag.X, math.Max(v.Mag.Y, v.Mag.Z))
	r.TasVar = v.Tas
	r.TerrVar = c.RngVar()

	r.Roll, r.Pitch, r.Yaw = c.EulerAngles()

	vel := c.VelNED()
	r.VelN, r.VelE, r.VelD = vel.X, vel.Y, vel.Z

	// Ship the dead-reckoned location even when invalid so the GCS can draw
	// a last known position marker; PosValid tells it not to navigate on it.
	loc, ok := c.LLH()
	r.Lat, r.Lon, r.Alt = loc.Lat, loc.Lon, loc.Alt
	r.PosValid = ok

	if fetchErr != nil {
		r.ErrorMessage = fetchErr.Error()
	}
	return r
}
