// Package store persists finalized capture results in SQLite.
//
// Each completed capture saves one header row plus its scores: summed totals
// as round zero and the per-round breakdown for multi-round workflows. Names
// that never finalized are stored as gaps so the caller can audit what the
// roster is missing. The database is guarded by a flock on the state
// directory; only one tally process may own it at a time.
package store
