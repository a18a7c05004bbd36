package main

import (
	"reflect"
	"testing"
)

func TestParsePicks(t *testing.T) {
	picks, err := parsePicks([]string{"Slaviax=1300", " Darek = 900 "})
	if err != nil {
		t.Fatalf("parsePicks: %v", err)
	}
	want := map[string]int64{"Slaviax": 1300, "Darek": 900}
	if !reflect.DeepEqual(picks, want) {
		t.Fatalf("picks = %v, want %v", picks, want)
	}
}

func TestParsePicksRejectsMalformed(t *testing.T) {
	for _, pick := range []string{"Slaviax", "=1300", "Slaviax=abc"} {
		if _, err := parsePicks([]string{pick}); err == nil {
			t.Errorf("parsePicks(%q) succeeded, want error", pick)
		}
	}
}

func TestParsePicksEmpty(t *testing.T) {
	picks, err := parsePicks(nil)
	if err != nil {
		t.Fatalf("parsePicks: %v", err)
	}
	if picks != nil {
		t.Fatalf("picks = %v, want nil", picks)
	}
}

func TestSortedNames(t *testing.T) {
	scores := map[string]int64{"b": 10, "a": 10, "c": 30}
	got := sortedNames(scores)
	want := []string{"c", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sortedNames = %v, want %v", got, want)
	}
}
