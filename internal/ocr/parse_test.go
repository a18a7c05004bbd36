package ocr

import (
	"reflect"
	"testing"
)

func TestParseReadings(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Reading
	}{
		{
			name: "plain name and score",
			text: "Slaviax 123456",
			want: []Reading{{Name: "Slaviax", Score: 123456}},
		},
		{
			name: "thousands separators",
			text: "Kret 1,234,567",
			want: []Reading{{Name: "Kret", Score: 1234567}},
		},
		{
			name: "split thousands groups",
			text: "Kret 1 234 567",
			want: []Reading{{Name: "Kret", Score: 1234567}},
		},
		{
			name: "leading rank column",
			text: "4 Slaviax 9000",
			want: []Reading{{Name: "Slaviax", Score: 9000}},
		},
		{
			name: "missing score means zero",
			text: "Slaviax",
			want: []Reading{{Name: "Slaviax", Score: 0}},
		},
		{
			name: "multi word name",
			text: "Stary Wilk 500",
			want: []Reading{{Name: "Stary Wilk", Score: 500}},
		},
		{
			name: "multiple lines with noise",
			text: "RANKING\nSlaviax 100\n\n???\nKret 0\n12345",
			want: []Reading{
				{Name: "RANKING", Score: 0},
				{Name: "Slaviax", Score: 100},
				{Name: "Kret", Score: 0},
			},
		},
		{
			name: "digits only line dropped",
			text: "123 456",
			want: nil,
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseReadings(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseReadings(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseLineRankWithoutName(t *testing.T) {
	// A lone rank number followed by a score must not invent a name.
	if got := ParseReadings("7 12345"); got != nil {
		t.Errorf("expected numeric-only line to be dropped, got %v", got)
	}
}
