// Package wire defines the report message exchanged between navlane-monitor
// and navlane-groundlink, together with the fixed bit layouts of the filter
// status, fault and GPS-check bitmasks.
//
// The bit positions are part of the external interface: ground-station
// tooling decodes them, so they must never be renumbered. The monitor keeps
// its internal representation as named booleans (see monitor/internal/ekf)
// and serializes to these masks only at the wire boundary.
package wire
