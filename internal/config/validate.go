package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for values the coordinator cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.StateDir) == "" {
		problems = append(problems, "paths.state_dir must be set")
	}
	if c.Queue.ReservationSeconds <= 0 {
		problems = append(problems, "queue.reservation_seconds must be positive")
	}
	if c.Session.InactivitySeconds <= 0 {
		problems = append(problems, "session.inactivity_seconds must be positive")
	}
	if c.Session.MaxBatchImages <= 0 {
		problems = append(problems, "session.max_batch_images must be positive")
	}
	if c.Matching.AcceptThreshold <= 0 || c.Matching.AcceptThreshold > 1 {
		problems = append(problems, "matching.accept_threshold must be in (0, 1]")
	}
	if c.Matching.ShortMismatchMax < 0 || c.Matching.LongMismatchMax < c.Matching.ShortMismatchMax {
		problems = append(problems, "matching mismatch tolerances must satisfy 0 <= short <= long")
	}
	if c.Matching.LongLength < 5 {
		problems = append(problems, "matching.long_length must be at least 5")
	}
	if len(c.OCR.Languages) == 0 {
		problems = append(problems, "ocr.languages must list at least one language")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
