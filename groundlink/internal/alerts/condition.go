package alerts

import (
	"strconv"
	"strings"

	"github.com/navlane/navlane/pkg/wire"
)

// evalCondition evaluates a rule condition string against a lane report.
//
// Supported expressions (field operator value):
//
//	error_score > 1
//	healthy == false
//	primary == true
//	faults != 0
//	gps_checks != 0
//	vel_var > 1
//	pos_var > 1
//	hgt_var > 1
//	mag_var > 1
//	tas_var > 1
//	terr_var > 1
//
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed or the field is unknown.
func evalCondition(cond string, rep wire.StatusReport) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	switch field {
	case "healthy", "primary":
		want, err := strconv.ParseBool(rhs)
		if err != nil {
			return false, 0
		}
		v := rep.Healthy
		if field == "primary" {
			v = rep.Primary
		}
		switch op {
		case "==":
			return v == want, boolVal(v)
		case "!=":
			return v != want, boolVal(v)
		}
		return false, 0

	default:
		v, ok := numericField(field, rep)
		if !ok {
			return false, 0
		}
		threshold, err := strconv.ParseFloat(rhs, 64)
		if err != nil {
			return false, 0
		}
		return compareFloat(v, op, threshold), v
	}
}

// numericField maps a field name to its value in the report.
func numericField(field string, rep wire.StatusReport) (float64, bool) {
	switch field {
	case "error_score":
		return rep.ErrorScore, true
	case "faults":
		return float64(rep.Faults), true
	case "gps_checks":
		return float64(rep.GpsChecks), true
	case "vel_var":
		return rep.VelVar, true
	case "pos_var":
		return rep.PosVar, true
	case "hgt_var":
		return rep.HgtVar, true
	case "mag_var":
		return rep.MagVar, true
	case "tas_var":
		return rep.TasVar, true
	case "terr_var":
		return rep.TerrVar, true
	default:
		return 0, false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	case "!=":
		return v != threshold
	default:
		return false
	}
}

func boolVal(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
