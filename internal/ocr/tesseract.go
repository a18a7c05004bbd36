package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"tally/internal/config"
)

// TesseractEngine implements Engine on top of the gosseract client. A fresh
// client is created per call; gosseract clients are not safe for reuse across
// goroutines and recognition dominates the cost anyway.
type TesseractEngine struct {
	languages      []string
	tessdataPrefix string
	clientFactory  func() *gosseract.Client
}

// NewTesseractEngine builds a Tesseract-backed engine from OCR configuration.
func NewTesseractEngine(cfg config.OCR) *TesseractEngine {
	return &TesseractEngine{
		languages:      cfg.Languages,
		tessdataPrefix: cfg.TessdataPrefix,
		clientFactory:  gosseract.NewClient,
	}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize runs OCR over one encoded image and returns the extracted text.
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	client := e.clientFactory()
	defer client.Close()

	if e.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.tessdataPrefix); err != nil {
			return "", fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if len(e.languages) > 0 {
		if err := client.SetLanguage(e.languages...); err != nil {
			return "", fmt.Errorf("set languages %s: %w", strings.Join(e.languages, ","), err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return text, nil
}
