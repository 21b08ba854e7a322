package ekf

import "math"

// Vec2 is a 2-D vector. In this package it carries NE (north, east) pairs.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec3 is a 3-D vector. In this package it carries NED triples or
// per-axis magnetometer values.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// IsNaN reports whether any component is NaN.
func (v Vec3) IsNaN() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}

// Location is a WGS-84 position. Lat and Lon are in degrees, Alt in metres
// above the ellipsoid.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Alt float64 `json:"alt"`
}

// earthRadiusM is the WGS-84 equatorial radius used for the small-offset
// approximation in Offset.
const earthRadiusM = 6378137.0

// Offset returns l displaced by north and east metres. The flat-earth
// approximation is adequate for the few-kilometre offsets a filter origin
// ever sees.
func (l Location) Offset(north, east float64) Location {
	dLat := north / earthRadiusM * (180.0 / math.Pi)
	dLon := east / (earthRadiusM * math.Cos(l.Lat*math.Pi/180.0)) * (180.0 / math.Pi)
	return Location{Lat: l.Lat + dLat, Lon: l.Lon + dLon, Alt: l.Alt}
}
