// Package arbiter selects the primary lane among redundant estimator lanes.
//
// Health is a hard gate: an unhealthy or stale lane is never selected while
// a usable alternative exists. Among usable lanes the error score ranks
// candidates, with a switch margin and cooldown damping voluntary switches
// so two lanes with near-equal scores do not flap.
package arbiter
