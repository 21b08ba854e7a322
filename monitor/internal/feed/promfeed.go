package feed

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/common/expfmt"

	"github.com/navlane/navlane/monitor/internal/config"
	"github.com/navlane/navlane/monitor/internal/ekf"
)

// Estimator gauge names in the promtext exposition. Vector quantities carry
// an "axis" label (x|y|z), the attitude quaternion a "component" label
// (w|x|y|z), and the flag families a "type", "flag" or "check" label with
// 0/1 values.
const (
	mVelTestRatio    = "nav_ekf_vel_test_ratio"
	mPosTestRatio    = "nav_ekf_pos_test_ratio"
	mHgtTestRatio    = "nav_ekf_hgt_test_ratio"
	mTasTestRatio    = "nav_ekf_tas_test_ratio"
	mYawTestRatio    = "nav_ekf_yaw_test_ratio"
	mMagTestRatio    = "nav_ekf_mag_test_ratio"
	mAuxRngTestRatio = "nav_ekf_aux_rng_test_ratio"

	mFault = "nav_ekf_fault"

	mStatesInitialised = "nav_ekf_states_initialised"
	mTiltAlignComplete = "nav_ekf_tilt_align_complete"
	mYawAlignComplete  = "nav_ekf_yaw_align_complete"
	mAidingMode        = "nav_ekf_aiding_mode"
	mOnGround          = "nav_ekf_on_ground"

	mImuSampleMS = "nav_ekf_imu_sample_ms"
	mStartMS     = "nav_ekf_start_ms"

	mPosInnovNE   = "nav_ekf_pos_innov_ne"
	mHgtInnovFilt = "nav_ekf_hgt_innov_filt"

	mQuat        = "nav_ekf_quat"
	mVelNED      = "nav_ekf_vel_ned"
	mPosNED      = "nav_ekf_pos_ned"
	mWindVel     = "nav_ekf_wind_vel"
	mInhibitWind = "nav_ekf_inhibit_wind"

	mVelInnov = "nav_ekf_vel_innov"
	mPosInnov = "nav_ekf_pos_innov"
	mMagInnov = "nav_ekf_mag_innov"
	mTasInnov = "nav_ekf_tas_innov"
	mYawInnov = "nav_ekf_yaw_innov"

	mOriginValid    = "nav_ekf_origin_valid"
	mOriginLat      = "nav_ekf_origin_lat"
	mOriginLon      = "nav_ekf_origin_lon"
	mOriginAlt      = "nav_ekf_origin_alt"
	mLastKnownPosNE = "nav_ekf_last_known_pos_ne"

	mRngAidActive = "nav_ekf_rng_aid_active"

	mStatusFlag = "nav_ekf_status_flag"
	mGpsCheck   = "nav_ekf_gps_check"
)

type promFeed struct {
	laneID string
	src    config.Source
	client *http.Client
}

// Fetch retrieves the lane's metrics endpoint and maps the nav_ekf_* gauges
// onto the lane state contract. Gauges absent from the exposition read as
// zero, which for the flag families means "false" and for the alignment
// gauges means "not complete"; a half-exposed estimator therefore looks
// unhealthy rather than healthy.
func (f *promFeed) Fetch(ctx context.Context) (*ekf.LaneState, error) {
	body, err := fetchBody(ctx, f.client, f.src.Endpoint,
		string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	if err != nil {
		return nil, fmt.Errorf("promtext feed %q: %w", f.laneID, err)
	}
	defer body.Close()

	mfs, err := parseMetrics(body)
	if err != nil {
		return nil, fmt.Errorf("promtext feed %q: %w", f.laneID, err)
	}

	s := &ekf.LaneState{
		VelTestRatio:    gaugeValue(mfs[mVelTestRatio]),
		PosTestRatio:    gaugeValue(mfs[mPosTestRatio]),
		HgtTestRatio:    gaugeValue(mfs[mHgtTestRatio]),
		TasTestRatio:    gaugeValue(mfs[mTasTestRatio]),
		YawTestRatio:    gaugeValue(mfs[mYawTestRatio]),
		MagTestRatio:    vec3Of(mfs, mMagTestRatio),
		AuxRngTestRatio: gaugeValue(mfs[mAuxRngTestRatio]),

		StatesInitialised: boolGauge(mfs, mStatesInitialised),
		TiltAlignComplete: boolGauge(mfs, mTiltAlignComplete),
		YawAlignComplete:  boolGauge(mfs, mYawAlignComplete),
		OnGround:          boolGauge(mfs, mOnGround),

		ImuSampleMS: int64(gaugeValue(mfs[mImuSampleMS])),
		StartMS:     int64(gaugeValue(mfs[mStartMS])),

		HgtInnovFilt: gaugeValue(mfs[mHgtInnovFilt]),

		VelNED:      vec3Of(mfs, mVelNED),
		PosNED:      vec3Of(mfs, mPosNED),
		WindVel:     vec2Of(mfs, mWindVel),
		InhibitWind: boolGauge(mfs, mInhibitWind),

		VelInnov: vec3Of(mfs, mVelInnov),
		PosInnov: vec3Of(mfs, mPosInnov),
		MagInnov: vec3Of(mfs, mMagInnov),
		TasInnov: gaugeValue(mfs[mTasInnov]),
		YawInnov: gaugeValue(mfs[mYawInnov]),

		OriginValid:    boolGauge(mfs, mOriginValid),
		OriginLat:      gaugeValue(mfs[mOriginLat]),
		OriginLon:      gaugeValue(mfs[mOriginLon]),
		OriginAlt:      gaugeValue(mfs[mOriginAlt]),
		LastKnownPosNE: vec2Of(mfs, mLastKnownPosNE),

		RngAidActive: boolGauge(mfs, mRngAidActive),
	}

	ne := labelValues(mfs[mPosInnovNE], "axis")
	s.PosInnovNE = ekf.Vec2{X: ne["x"], Y: ne["y"]}

	q := labelValues(mfs[mQuat], "component")
	s.Quat = [4]float64{q["w"], q["x"], q["y"], q["z"]}

	switch int(gaugeValue(mfs[mAidingMode])) {
	case 1:
		s.AidingMode = ekf.AidRelative
	case 2:
		s.AidingMode = ekf.AidAbsolute
	default:
		s.AidingMode = ekf.AidNone
	}

	faults := labelValues(mfs[mFault], "type")
	s.Faults = ekf.FaultFlags{
		BadXMag:     faults["x_mag"] != 0,
		BadYMag:     faults["y_mag"] != 0,
		BadZMag:     faults["z_mag"] != 0,
		BadAirspeed: faults["airspeed"] != 0,
		BadSideslip: faults["sideslip"] != 0,
	}

	flags := labelValues(mfs[mStatusFlag], "flag")
	s.Status = ekf.StatusFlags{
		Attitude:        flags["attitude"] != 0,
		HorizVel:        flags["horiz_vel"] != 0,
		VertVel:         flags["vert_vel"] != 0,
		HorizPosRel:     flags["horiz_pos_rel"] != 0,
		HorizPosAbs:     flags["horiz_pos_abs"] != 0,
		VertPos:         flags["vert_pos"] != 0,
		TerrainAlt:      flags["terrain_alt"] != 0,
		ConstPosMode:    flags["const_pos_mode"] != 0,
		PredHorizPosRel: flags["pred_horiz_pos_rel"] != 0,
		PredHorizPosAbs: flags["pred_horiz_pos_abs"] != 0,
		Initialised:     flags["initialised"] != 0,
		GpsGlitching:    flags["gps_glitching"] != 0,
	}

	checks := labelValues(mfs[mGpsCheck], "check")
	s.GpsChecks = ekf.GpsCheckFlags{
		BadSpeedAcc:   checks["speed_acc"] != 0,
		BadHorizAcc:   checks["horiz_acc"] != 0,
		BadVertAcc:    checks["vert_acc"] != 0,
		BadYaw:        checks["yaw"] != 0,
		BadSatCount:   checks["sat_count"] != 0,
		BadHorizDrift: checks["horiz_drift"] != 0,
		BadHDoP:       checks["hdop"] != 0,
		BadVertVel:    checks["vert_vel"] != 0,
		BadFix:        checks["fix"] != 0,
		BadHorizVel:   checks["horiz_vel"] != 0,
	}

	return s, nil
}
