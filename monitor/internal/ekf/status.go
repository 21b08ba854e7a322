package ekf

import "github.com/navlane/navlane/pkg/wire"

// StatusFlags describes which filter outputs are currently trustworthy.
// It is computed by the estimator's mode logic and passes through this layer
// unchanged; Bitmask serializes it at the wire boundary only.
type StatusFlags struct {
	Attitude        bool `json:"attitude"`
	HorizVel        bool `json:"horiz_vel"`
	VertVel         bool `json:"vert_vel"`
	HorizPosRel     bool `json:"horiz_pos_rel"`
	HorizPosAbs     bool `json:"horiz_pos_abs"`
	VertPos         bool `json:"vert_pos"`
	TerrainAlt      bool `json:"terrain_alt"`
	ConstPosMode    bool `json:"const_pos_mode"`
	PredHorizPosRel bool `json:"pred_horiz_pos_rel"`
	PredHorizPosAbs bool `json:"pred_horiz_pos_abs"`
	Initialised     bool `json:"initialised"`
	GpsGlitching    bool `json:"gps_glitching"`
}

// Bitmask packs the flags into the fixed wire layout. Note the inversion:
// the wire carries an "uninitialized" bit, the struct a positive flag.
func (f StatusFlags) Bitmask() uint16 {
	var m uint16
	if f.Attitude {
		m |= wire.FlagAttitude
	}
	if f.HorizVel {
		m |= wire.FlagVelocityHoriz
	}
	if f.VertVel {
		m |= wire.FlagVelocityVert
	}
	if f.HorizPosRel {
		m |= wire.FlagPosHorizRel
	}
	if f.HorizPosAbs {
		m |= wire.FlagPosHorizAbs
	}
	if f.VertPos {
		m |= wire.FlagPosVertAbs
	}
	if f.TerrainAlt {
		m |= wire.FlagPosVertAGL
	}
	if f.ConstPosMode {
		m |= wire.FlagConstPosMode
	}
	if f.PredHorizPosRel {
		m |= wire.FlagPredPosHorizRel
	}
	if f.PredHorizPosAbs {
		m |= wire.FlagPredPosHorizAbs
	}
	if !f.Initialised {
		m |= wire.FlagUninitialized
	}
	if f.GpsGlitching {
		m |= wire.FlagGpsGlitching
	}
	return m
}

// GpsCheckFlags is the outcome of the estimator's GPS pre-use quality
// checks. Every check that failed on the last evaluation is true.
type GpsCheckFlags struct {
	BadSpeedAcc   bool `json:"bad_speed_acc"`
	BadHorizAcc   bool `json:"bad_horiz_acc"`
	BadVertAcc    bool `json:"bad_vert_acc"`
	BadYaw        bool `json:"bad_yaw"`
	BadSatCount   bool `json:"bad_sat_count"`
	BadHorizDrift bool `json:"bad_horiz_drift"`
	BadHDoP       bool `json:"bad_hdop"`
	BadVertVel    bool `json:"bad_vert_vel"`
	BadFix        bool `json:"bad_fix"`
	BadHorizVel   bool `json:"bad_horiz_vel"`
}

// Bitmask packs the check results into the fixed wire layout.
func (f GpsCheckFlags) Bitmask() uint16 {
	var m uint16
	if f.BadSpeedAcc {
		m |= wire.GpsBadSpeedAcc
	}
	if f.BadHorizAcc {
		m |= wire.GpsBadHorizAcc
	}
	if f.BadVertAcc {
		m |= wire.GpsBadVertAcc
	}
	if f.BadYaw {
		m |= wire.GpsBadYaw
	}
	if f.BadSatCount {
		m |= wire.GpsBadSatCount
	}
	if f.BadHorizDrift {
		m |= wire.GpsBadHorizDrift
	}
	if f.BadHDoP {
		m |= wire.GpsBadHDoP
	}
	if f.BadVertVel {
		m |= wire.GpsBadVertVel
	}
	if f.BadFix {
		m |= wire.GpsBadFix
	}
	if f.BadHorizVel {
		m |= wire.GpsBadHorizVel
	}
	return m
}

// FaultFlags holds the numerical-conditioning faults raised by the fusion
// routines when an innovation variance is near-singular. They clear on the
// next healthy fusion step for that channel.
type FaultFlags struct {
	BadXMag     bool `json:"bad_xmag"`
	BadYMag     bool `json:"bad_ymag"`
	BadZMag     bool `json:"bad_zmag"`
	BadAirspeed bool `json:"bad_airspeed"`
	BadSideslip bool `json:"bad_sideslip"`
}
