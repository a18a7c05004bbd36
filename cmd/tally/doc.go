// Package main hosts the tally CLI entrypoint and command graph.
//
// The Cobra-based command tree wires the capture pipeline end to end: it
// loads configuration, opens the result store, builds the admission
// coordinator and session manager, and drives a full scan from screenshot
// files to stored scores. Supporting commands expose the fuzzy identity
// matcher for threshold tuning, list stored captures, and scaffold
// configuration.
//
// Keep this package lean: new behavior belongs in the internal packages
// first, surfaced here through dedicated commands or flags.
package main
