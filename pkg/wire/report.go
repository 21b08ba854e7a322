package wire

import "time"

// StatusReport is one lane's consolidated status at a point in time, as
// shipped from navlane-monitor to navlane-groundlink.
//
// Variance fields are the square roots of the innovation consistency test
// ratios, so a value of 1.0 marks the edge of the filter's own rejection
// threshold. MagVar is the worst of the three magnetometer axes.
type StatusReport struct {
	LaneID  string `json:"lane_id"`
	Primary bool   `json:"primary"`

	Healthy    bool    `json:"healthy"`
	ErrorScore float64 `json:"error_score"`

	// Flags, Faults and GpsChecks use the fixed bit layouts in flags.go.
	Flags     uint16 `json:"flags"`
	Faults    uint16 `json:"faults"`
	GpsChecks uint16 `json:"gps_checks"`

	VelVar  float64 `json:"vel_var"`
	PosVar  float64 `json:"pos_var"`
	HgtVar  float64 `json:"hgt_var"`
	MagVar  float64 `json:"mag_var"`
	TasVar  float64 `json:"tas_var"`
	TerrVar float64 `json:"terr_var"`

	// Attitude in radians and NED velocity in m/s, for GCS display only.
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	VelN  float64 `json:"vel_n"`
	VelE  float64 `json:"vel_e"`
	VelD  float64 `json:"vel_d"`

	// WGS-84 position. PosValid is false when the lane is dead reckoning or
	// has no origin; consumers must not navigate on an invalid position.
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Alt      float64 `json:"alt"`
	PosValid bool    `json:"pos_valid"`

	// ErrorMessage is non-empty when the monitor could not fetch lane state;
	// all other fields then describe the last known sample.
	ErrorMessage string `json:"error_message,omitempty"`

	SentAt time.Time `json:"sent_at"`
}

// ReportBatch is the body of POST /ingest/v1/reports.
type ReportBatch struct {
	Reports []StatusReport `json:"reports"`
}

// IngestResponse acknowledges a report batch.
type IngestResponse struct {
	Accepted int    `json:"accepted"`
	Message  string `json:"message,omitempty"`
}
