// Package logging wires log/slog with the formats and field conventions used
// across tally.
//
// New builds a logger from explicit options; NewFromConfig derives them from
// application config, teeing output to stdout and the configured log
// directory. Attribute helpers and the Field* constants keep structured keys
// consistent so records for one community or session can be correlated.
package logging
