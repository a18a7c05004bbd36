package ocr

import (
	"strconv"
	"strings"
	"unicode"
)

// Reading is one (name, score) pair extracted from a single image's text.
type Reading struct {
	Name  string
	Score int64
}

// scoreSeparators are thousands separators OCR engines emit inside numbers.
var scoreSeparators = strings.NewReplacer(",", "", ".", "", " ", "")

// ParseReadings extracts per-member score lines from raw OCR text. Each line
// is expected to carry a member name optionally surrounded by a leading rank
// number and trailing score digits. A missing or unreadable score becomes
// zero: "boss not fought" renders as no digits at all, and dropping the line
// would lose the member entirely.
func ParseReadings(text string) []Reading {
	var readings []Reading
	for _, line := range strings.Split(text, "\n") {
		if reading, ok := parseLine(line); ok {
			readings = append(readings, reading)
		}
	}
	return readings
}

func parseLine(line string) (Reading, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Reading{}, false
	}

	// Trailing numeric tokens form the score; OCR splits thousands groups,
	// so "1 234 567" is one number.
	end := len(fields)
	for end > 0 && isNumericToken(fields[end-1]) {
		end--
	}
	score := parseScore(fields[end:])

	// A leading pure number with name tokens after it is a rank column.
	start := 0
	if end > 1 && isNumericToken(fields[0]) {
		start = 1
	}

	name := strings.TrimSpace(strings.Join(fields[start:end], " "))
	if !hasLetter(name) {
		return Reading{}, false
	}
	return Reading{Name: name, Score: score}, true
}

func parseScore(tokens []string) int64 {
	if len(tokens) == 0 {
		return 0
	}
	joined := scoreSeparators.Replace(strings.Join(tokens, ""))
	value, err := strconv.ParseInt(joined, 10, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func isNumericToken(token string) bool {
	cleaned := scoreSeparators.Replace(token)
	if cleaned == "" {
		return false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
