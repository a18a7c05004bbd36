// Package config loads and validates the TOML configuration for tally.
//
// Default() supplies the repository defaults, Load() layers a config file on
// top of them, and Validate() rejects values the admission queue, session
// manager, or identity resolver cannot operate with. The fuzzy matching
// thresholds live here deliberately: they are tuned constants, not derived
// ones, and operators adjusting them should not need a rebuild.
package config
