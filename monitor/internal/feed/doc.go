// Package feed fetches estimator state samples from lane endpoints.
//
// Two encodings are supported: "json", a direct JSON rendering of the lane
// state contract, and "promtext", the Prometheus text exposition format for
// estimators that only expose a metrics endpoint. Both decode to the same
// ekf.LaneState, so the rest of the monitor never sees the transport.
package feed
