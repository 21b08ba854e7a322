// Package config loads and validates the navlane-monitor YAML configuration:
// the set of EKF lanes to poll, per-lane sensor affinity, vehicle sensor
// inventory, arbiter tuning and the groundlink uplink settings.
//
// Secrets (API keys, tokens, passwords) are never stored in the file itself;
// the config names environment variables and the accessors resolve them at
// use time.
//
// Watch provides fsnotify-based hot reload of the file.
package config
