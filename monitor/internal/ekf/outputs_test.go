package ekf

import (
	"math"
	"testing"
)

func TestEulerAngles_Identity(t *testing.T) {
	c := newCore(flyingState(), defaultReg)
	roll, pitch, yaw := c.EulerAngles()
	if !almostEqual(roll, 0, 1e-12) || !almostEqual(pitch, 0, 1e-12) || !almostEqual(yaw, 0, 1e-12) {
		t.Errorf("identity quaternion gave (%v, %v, %v), want zeros", roll, pitch, yaw)
	}
}

func TestEulerAngles_PureYaw(t *testing.T) {
	s := flyingState()
	half := math.Pi / 4 // 90 deg yaw -> half angle 45 deg
	s.Quat = [4]float64{math.Cos(half), 0, 0, math.Sin(half)}
	c := newCore(s, defaultReg)
	roll, pitch, yaw := c.EulerAngles()
	if !almostEqual(yaw, math.Pi/2, 1e-9) {
		t.Errorf("yaw = %v, want pi/2", yaw)
	}
	if !almostEqual(roll, 0, 1e-9) || !almostEqual(pitch, 0, 1e-9) {
		t.Errorf("roll/pitch = %v/%v, want zeros", roll, pitch)
	}
}

func TestEulerAngles_PureRoll(t *testing.T) {
	s := flyingState()
	half := math.Pi / 6 // 60 deg roll
	s.Quat = [4]float64{math.Cos(half), math.Sin(half), 0, 0}
	c := newCore(s, defaultReg)
	roll, _, _ := c.EulerAngles()
	if !almostEqual(roll, math.Pi/3, 1e-9) {
		t.Errorf("roll = %v, want pi/3", roll)
	}
}

func TestWind(t *testing.T) {
	s := flyingState()
	s.WindVel = Vec2{X: 3, Y: -4}
	s.InhibitWind = false
	c := newCore(s, defaultReg)
	if w, ok := c.Wind(); !ok || w != (Vec2{X: 3, Y: -4}) {
		t.Errorf("Wind() = %v, %v; want estimate with ok=true", w, ok)
	}

	s.InhibitWind = true
	c = newCore(s, defaultReg)
	if _, ok := c.Wind(); ok {
		t.Error("Wind() ok = true while wind states inhibited")
	}
}

func TestPosNE_Modes(t *testing.T) {
	s := flyingState()
	s.PosNED = Vec3{X: 10, Y: 20, Z: -30}
	s.LastKnownPosNE = Vec2{X: 1, Y: 2}
	s.OriginValid = true

	s.AidingMode = AidAbsolute
	c := newCore(s, defaultReg)
	if p, ok := c.PosNE(); !ok || p != (Vec2{X: 10, Y: 20}) {
		t.Errorf("aided PosNE() = %v, %v; want filter states with ok=true", p, ok)
	}

	s.AidingMode = AidNone
	c = newCore(s, defaultReg)
	if p, ok := c.PosNE(); ok || p != (Vec2{X: 1, Y: 2}) {
		t.Errorf("unaided PosNE() = %v, %v; want last known position with ok=false", p, ok)
	}

	s.OriginValid = false
	c = newCore(s, defaultReg)
	if p, ok := c.PosNE(); ok || p != (Vec2{}) {
		t.Errorf("no-origin PosNE() = %v, %v; want zero with ok=false", p, ok)
	}
}

func TestPosD(t *testing.T) {
	s := flyingState()
	s.PosNED.Z = -42.5
	s.Status.VertPos = true
	c := newCore(s, defaultReg)
	if d, ok := c.PosD(); !ok || d != -42.5 {
		t.Errorf("PosD() = %v, %v; want -42.5 with ok=true", d, ok)
	}

	s.Status.VertPos = false
	c = newCore(s, defaultReg)
	if _, ok := c.PosD(); ok {
		t.Error("PosD() ok = true without a vertical position solution")
	}
}

func TestLLH(t *testing.T) {
	s := flyingState()
	s.OriginValid = true
	s.OriginLat = 47.0
	s.OriginLon = 8.0
	s.OriginAlt = 500.0
	s.PosNED = Vec3{X: 1000, Y: 0, Z: -50}
	s.Status.HorizPosAbs = true

	c := newCore(s, defaultReg)
	loc, ok := c.LLH()
	if !ok {
		t.Fatal("LLH() ok = false for an aided filter with valid origin")
	}
	// 1000 m north is roughly 0.009 degrees of latitude.
	if !almostEqual(loc.Lat, 47.0+1000.0/earthRadiusM*180.0/math.Pi, 1e-9) {
		t.Errorf("Lat = %v", loc.Lat)
	}
	if !almostEqual(loc.Lon, 8.0, 1e-12) {
		t.Errorf("Lon = %v, want unchanged 8.0", loc.Lon)
	}
	if !almostEqual(loc.Alt, 550.0, 1e-9) {
		t.Errorf("Alt = %v, want 550 (origin minus down position)", loc.Alt)
	}
}

func TestLLH_NoOrigin(t *testing.T) {
	c := newCore(flyingState(), defaultReg)
	if _, ok := c.LLH(); ok {
		t.Error("LLH() ok = true without a valid origin")
	}
}

func TestVariances(t *testing.T) {
	s := flyingState()
	s.VelTestRatio = 4
	s.PosTestRatio = 9
	s.HgtTestRatio = 16
	s.TasTestRatio = 25
	s.MagTestRatio = Vec3{X: 0.25, Y: 4, Z: 0}
	s.YawTestRatio = 1 // simple yaw fusion floor
	c := newCore(s, defaultReg)

	v := c.Variances()
	if v.Vel != 2 || v.Pos != 3 || v.Hgt != 4 || v.Tas != 5 {
		t.Errorf("scalar variances = %+v", v)
	}
	// Per component: sqrt(max(mag, yaw)).
	if v.Mag.X != 1 || v.Mag.Y != 2 || v.Mag.Z != 1 {
		t.Errorf("mag variances = %+v, want yaw ratio floor applied", v.Mag)
	}
}

func TestRngVar_GatedOnAiding(t *testing.T) {
	s := flyingState()
	s.AuxRngTestRatio = 9
	c := newCore(s, defaultReg)
	if got := c.RngVar(); got != 0 {
		t.Errorf("RngVar() = %v with rangefinder aiding inactive, want 0", got)
	}

	s.RngAidActive = true
	c = newCore(s, defaultReg)
	if got := c.RngVar(); got != 3 {
		t.Errorf("RngVar() = %v, want 3", got)
	}
}

func TestInnovations_PassThrough(t *testing.T) {
	s := flyingState()
	s.VelInnov = Vec3{X: 0.1, Y: 0.2, Z: 0.3}
	s.TasInnov = 1.5
	s.YawInnov = -0.2
	c := newCore(s, defaultReg)
	inn := c.Innovations()
	if inn.Vel != s.VelInnov || inn.Tas != 1.5 || inn.Yaw != -0.2 {
		t.Errorf("Innovations() = %+v", inn)
	}
}
