// Package telemetry flattens lane state into the wire report shipped to
// navlane-groundlink. All bit packing for the fixed wire layouts happens
// here, at the boundary; internal code works with named flags only.
package telemetry
