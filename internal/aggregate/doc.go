// Package aggregate merges per-image OCR readings into a trustworthy
// name-to-score roster.
//
// Every image contributes one observation per name. A name is confirmed when
// all of its observations agree; disagreement opens a conflict that must be
// resolved by an explicit choice before the name can finalize. Unresolved
// names are excluded from the final map and reported as gaps. Series layers
// multi-round workflows on top, summing finalized rounds per name.
package aggregate
