// Package session runs the capture workflow: an owner who holds a community
// reservation opens a session, submits screenshot batches through the OCR
// engine, reviews the aggregated scores, resolves disagreements and confirms
// the result into durable storage. The manager enforces the stage machine,
// the per-owner session limit and the inactivity timeout, and guarantees the
// community lease is released on every terminal path.
package session
