package api

// StatusResponse is the payload for GET /api/v1/status.
type StatusResponse struct {
	State          string  `json:"state"` // nominal | degraded | critical | unknown
	PrimaryLane    string  `json:"primary_lane,omitempty"`
	LaneCount      int     `json:"lane_count"`
	HealthyCount   int     `json:"healthy_count"`
	UnhealthyCount int     `json:"unhealthy_count"`
	WorstScore     float64 `json:"worst_score"`
	AlertCount     int     `json:"alert_count"`
}

// LaneResponse is one lane entry in GET /api/v1/lanes or GET /api/v1/lanes/{id}.
type LaneResponse struct {
	LaneID     string  `json:"lane_id"`
	Primary    bool    `json:"primary"`
	Healthy    bool    `json:"healthy"`
	ErrorScore float64 `json:"error_score"`

	Flags     uint16 `json:"flags"`
	Faults    uint16 `json:"faults"`
	GpsChecks uint16 `json:"gps_checks"`

	// Decoded bit names, for humans and log scrapers.
	FaultNames    []string `json:"fault_names,omitempty"`
	GpsCheckNames []string `json:"gps_check_names,omitempty"`

	VelVar  float64 `json:"vel_var"`
	PosVar  float64 `json:"pos_var"`
	HgtVar  float64 `json:"hgt_var"`
	MagVar  float64 `json:"mag_var"`
	TasVar  float64 `json:"tas_var"`
	TerrVar float64 `json:"terr_var"`

	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	VelN  float64 `json:"vel_n"`
	VelE  float64 `json:"vel_e"`
	VelD  float64 `json:"vel_d"`

	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Alt      float64 `json:"alt"`
	PosValid bool    `json:"pos_valid"`

	ErrorMessage string           `json:"error_message,omitempty"`
	Diagnostics  []DiagnosticHint `json:"diagnostics"`
	LastSeen     string           `json:"last_seen"` // RFC3339
}

// SnapshotResponse is the payload for GET /api/v1/snapshot and the websocket
// broadcast body.
type SnapshotResponse struct {
	Lanes       []LaneResponse `json:"lanes"`
	PrimaryLane string         `json:"primary_lane,omitempty"`
	GeneratedAt string         `json:"generated_at"` // RFC3339
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
