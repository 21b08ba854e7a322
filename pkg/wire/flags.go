package wire

// Solution status bits carried in StatusReport.Flags. The layout matches the
// EKF_STATUS_REPORT flag encoding used by existing ground-station decoders.
const (
	FlagAttitude        uint16 = 1 << 0  // attitude estimate valid
	FlagVelocityHoriz   uint16 = 1 << 1  // horizontal velocity estimate valid
	FlagVelocityVert    uint16 = 1 << 2  // vertical velocity estimate valid
	FlagPosHorizRel     uint16 = 1 << 3  // relative horizontal position valid
	FlagPosHorizAbs     uint16 = 1 << 4  // absolute horizontal position valid
	FlagPosVertAbs      uint16 = 1 << 5  // absolute vertical position valid
	FlagPosVertAGL      uint16 = 1 << 6  // height above ground valid
	FlagConstPosMode    uint16 = 1 << 7  // constant position mode (no aiding)
	FlagPredPosHorizRel uint16 = 1 << 8  // relative horizontal position expected once flying
	FlagPredPosHorizAbs uint16 = 1 << 9  // absolute horizontal position expected once flying
	FlagUninitialized   uint16 = 1 << 10 // filter not yet initialised
	FlagGpsGlitching    uint16 = 1 << 15 // GPS input is glitching
)

// Fault bits carried in StatusReport.Faults. Positions are stable across
// versions; bit 0 is the lowest bit.
const (
	FaultQuatNaN        uint16 = 1 << 0 // quaternion states are NaN
	FaultVelNaN         uint16 = 1 << 1 // velocity states are NaN
	FaultBadXMag        uint16 = 1 << 2 // badly conditioned X magnetometer fusion
	FaultBadYMag        uint16 = 1 << 3 // badly conditioned Y magnetometer fusion
	FaultBadZMag        uint16 = 1 << 4 // badly conditioned Z magnetometer fusion
	FaultBadAirspeed    uint16 = 1 << 5 // badly conditioned airspeed fusion
	FaultBadSideslip    uint16 = 1 << 6 // badly conditioned synthetic sideslip fusion
	FaultNotInitialised uint16 = 1 << 7 // filter never initialised
)

// GPS pre-use check bits carried in StatusReport.GpsChecks.
const (
	GpsBadSpeedAcc   uint16 = 1 << 0 // reported speed accuracy insufficient
	GpsBadHorizAcc   uint16 = 1 << 1 // reported horizontal accuracy insufficient
	GpsBadVertAcc    uint16 = 1 << 2 // reported vertical accuracy insufficient
	GpsBadYaw        uint16 = 1 << 3 // heading accuracy too large for GPS use
	GpsBadSatCount   uint16 = 1 << 4 // reported satellite count insufficient
	GpsBadHorizDrift uint16 = 1 << 5 // horizontal drift too large (static check)
	GpsBadHDoP       uint16 = 1 << 6 // reported HDoP too large
	GpsBadVertVel    uint16 = 1 << 7 // vertical speed too large (static check)
	GpsBadFix        uint16 = 1 << 8 // no 3D fix available
	GpsBadHorizVel   uint16 = 1 << 9 // horizontal speed excessive (static check)
)

// faultNames maps fault bits to stable machine-readable names, ordered by
// bit position.
var faultNames = []struct {
	bit  uint16
	name string
}{
	{FaultQuatNaN, "quat_nan"},
	{FaultVelNaN, "vel_nan"},
	{FaultBadXMag, "bad_xmag"},
	{FaultBadYMag, "bad_ymag"},
	{FaultBadZMag, "bad_zmag"},
	{FaultBadAirspeed, "bad_airspeed"},
	{FaultBadSideslip, "bad_sideslip"},
	{FaultNotInitialised, "not_initialised"},
}

var gpsCheckNames = []struct {
	bit  uint16
	name string
}{
	{GpsBadSpeedAcc, "bad_speed_acc"},
	{GpsBadHorizAcc, "bad_horiz_acc"},
	{GpsBadVertAcc, "bad_vert_acc"},
	{GpsBadYaw, "bad_yaw"},
	{GpsBadSatCount, "bad_sat_count"},
	{GpsBadHorizDrift, "bad_horiz_drift"},
	{GpsBadHDoP, "bad_hdop"},
	{GpsBadVertVel, "bad_vert_vel"},
	{GpsBadFix, "bad_fix"},
	{GpsBadHorizVel, "bad_horiz_vel"},
}

// FaultNames decodes a fault bitmask into its set bit names, lowest bit first.
func FaultNames(mask uint16) []string {
	var out []string
	for _, f := range faultNames {
		if mask&f.bit != 0 {
			out = append(out, f.name)
		}
	}
	return out
}

// GpsCheckNames decodes a GPS-check bitmask into its set bit names.
func GpsCheckNames(mask uint16) []string {
	var out []string
	for _, f := range gpsCheckNames {
		if mask&f.bit != 0 {
			out = append(out, f.name)
		}
	}
	return out
}
