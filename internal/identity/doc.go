// Package identity matches noisy OCR name tokens to known community members.
//
// Tokens and candidate names are normalized to a lowercase
// alphanumeric-plus-Polish-diacritics alphabet, then scored by a cascade:
// exact match, substring containment for truncated captures, a bounded
// sliding-window comparison tolerating the one-to-two character misreads
// typical of the screenshots, and an ordered-character-overlap heuristic as a
// last resort. Acceptance is gated on the configured threshold; the closest
// candidate is reported either way so operators can inspect near misses.
package identity
