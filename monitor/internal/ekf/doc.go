// Package ekf is the read-only output layer over one navigation filter
// lane's estimator state.
//
// The estimator itself runs elsewhere (flight controller firmware); the
// monitor ingests its published state with Core.Apply and everything else in
// this package is a pure query over the last applied sample: consolidated
// health (Core.Healthy), the lane-selection error score (Core.ErrorScore),
// the fault/status/GPS-check bitmask translations and the consumer-facing
// accessors (attitude, velocity, position, innovations, variances).
//
// Core is not internally locked. The monitor's poll loop is the single
// writer and queries run between ticks on the same goroutine, matching the
// cooperative model the accessors were designed for: every query is O(1),
// allocation-free and total over the reachable state space.
package ekf
