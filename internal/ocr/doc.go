// Package ocr wraps the external text-recognition engine and parses its raw
// output into (name, score) readings.
//
// The default engine shells into Tesseract via gosseract. Recognition of one
// image is slow and the engine is treated as a non-shareable resource; the
// admission queue guarantees at most one call is in flight per deployment.
package ocr
