package ekf

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/num/quat"
)

// AidingMode is the position-reference regime the estimator is operating in.
type AidingMode int

const (
	// AidNone: no external position reference; the filter holds a constant
	// position and the on-ground static innovation check applies.
	AidNone AidingMode = iota
	// AidRelative: relative aiding (optical flow / body odometry).
	AidRelative
	// AidAbsolute: absolute aiding (GPS or equivalent).
	AidAbsolute
)

// String returns the wire spelling of the mode.
func (m AidingMode) String() string {
	switch m {
	case AidRelative:
		return "relative"
	case AidAbsolute:
		return "absolute"
	default:
		return "none"
	}
}

// ParseAidingMode converts the wire spelling back to an AidingMode.
func ParseAidingMode(s string) (AidingMode, error) {
	switch s {
	case "none", "":
		return AidNone, nil
	case "relative":
		return AidRelative, nil
	case "absolute":
		return AidAbsolute, nil
	default:
		return AidNone, fmt.Errorf("unknown aiding mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so JSON carries the mode as
// a string.
func (m AidingMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *AidingMode) UnmarshalText(b []byte) error {
	parsed, err := ParseAidingMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Registry is the capability interface a Core uses to reach vehicle-level
// configuration and sensor inventory. It is injected at construction so a
// lane owns a reference to its registry rather than reaching into a global.
type Registry interface {
	// AirspeedSensorCount is the number of independent airspeed sensors fitted.
	AirspeedSensorCount() int
	// AirspeedAffinity reports whether airspeed lane-affinity is enabled for
	// this lane, binding one airspeed sensor to it for redundancy voting.
	AirspeedAffinity() bool
	// MagAffinity reports whether magnetometer lane-affinity is enabled for
	// this lane, overriding the inherent compass switching mechanism.
	MagAffinity() bool
	// AssumeZeroSideslip reports whether the vehicle model assumes zero
	// sideslip (forward-flight vehicle).
	AssumeZeroSideslip() bool
}

// StaticRegistry is a fixed-value Registry, built from configuration.
type StaticRegistry struct {
	AirspeedSensors int
	AirspeedLane    bool
	MagLane         bool
	ZeroSideslip    bool
}

func (r StaticRegistry) AirspeedSensorCount() int { return r.AirspeedSensors }
func (r StaticRegistry) AirspeedAffinity() bool   { return r.AirspeedLane }
func (r StaticRegistry) MagAffinity() bool        { return r.MagLane }
func (r StaticRegistry) AssumeZeroSideslip() bool { return r.ZeroSideslip }

// LaneState is the estimator-published state sample for one lane, the
// inbound half of the boundary contract. Field names are the JSON wire
// spelling used by both the json and promtext feeds.
type LaneState struct {
	VelTestRatio    float64 `json:"vel_test_ratio"`
	PosTestRatio    float64 `json:"pos_test_ratio"`
	HgtTestRatio    float64 `json:"hgt_test_ratio"`
	TasTestRatio    float64 `json:"tas_test_ratio"`
	YawTestRatio    float64 `json:"yaw_test_ratio"`
	MagTestRatio    Vec3    `json:"mag_test_ratio"`
	AuxRngTestRatio float64 `json:"aux_rng_test_ratio"`

	Faults FaultFlags `json:"faults"`

	StatesInitialised bool       `json:"states_initialised"`
	TiltAlignComplete bool       `json:"tilt_align_complete"`
	YawAlignComplete  bool       `json:"yaw_align_complete"`
	AidingMode        AidingMode `json:"aiding_mode"`
	OnGround          bool       `json:"on_ground"`

	// Monotonic estimator-side milliseconds.
	ImuSampleMS int64 `json:"imu_sample_ms"`
	StartMS     int64 `json:"ekf_start_ms"`

	PosInnovNE   Vec2    `json:"pos_innov_ne"`
	HgtInnovFilt float64 `json:"hgt_innov_filt"`

	// Quat is the NED-to-body rotation as [w, x, y, z].
	Quat    [4]float64 `json:"quat"`
	VelNED  Vec3       `json:"vel_ned"`
	PosNED  Vec3       `json:"pos_ned"`
	WindVel Vec2       `json:"wind_vel"`
	// InhibitWind is true while wind states are not being estimated.
	InhibitWind bool `json:"inhibit_wind"`

	VelInnov Vec3    `json:"vel_innov"`
	PosInnov Vec3    `json:"pos_innov"`
	MagInnov Vec3    `json:"mag_innov"`
	TasInnov float64 `json:"tas_innov"`
	YawInnov float64 `json:"yaw_innov"`

	OriginValid    bool    `json:"origin_valid"`
	OriginLat      float64 `json:"origin_lat"`
	OriginLon      float64 `json:"origin_lon"`
	OriginAlt      float64 `json:"origin_alt"`
	LastKnownPosNE Vec2    `json:"last_known_pos_ne"`

	// RngAidActive is true when the rangefinder is the active height source
	// or optical-flow aiding is running; it gates rangefinder innovation
	// reporting so an auxiliary rangefinder cannot raise false alarms.
	RngAidActive bool `json:"rng_aid_active"`

	Status    StatusFlags   `json:"status"`
	GpsChecks GpsCheckFlags `json:"gps_checks"`
}

// Core holds the last applied LaneState for one lane and answers queries
// over it. Construct with NewCore; all query methods are pure reads.
type Core struct {
	reg Registry

	s LaneState
	q quat.Number

	haveSample bool
	appliedAt  time.Time
}

// NewCore returns a Core bound to reg. Until the first Apply the core
// reports uninitialised (fault bit set, unhealthy, zero score).
func NewCore(reg Registry) *Core {
	return &Core{reg: reg}
}

// Apply ingests a new estimator sample. The caller owns the write side of
// the cooperative model: Apply must not race with queries on the same Core.
func (c *Core) Apply(s *LaneState, now time.Time) {
	c.s = *s
	c.q = quat.Number{Real: s.Quat[0], Imag: s.Quat[1], Jmag: s.Quat[2], Kmag: s.Quat[3]}
	c.haveSample = true
	c.appliedAt = now
}

// HaveSample reports whether any estimator sample has been applied.
func (c *Core) HaveSample() bool { return c.haveSample }

// AppliedAt returns the monitor-side receive time of the last sample.
func (c *Core) AppliedAt() time.Time { return c.appliedAt }

// AidingMode returns the position-reference regime of the last sample.
func (c *Core) AidingMode() AidingMode { return c.s.AidingMode }

// OnGround reports the estimator's on-ground decision.
func (c *Core) OnGround() bool { return c.s.OnGround }

// Aligned reports whether initial tilt and yaw alignment both completed.
func (c *Core) Aligned() bool {
	return c.s.TiltAlignComplete && c.s.YawAlignComplete
}
