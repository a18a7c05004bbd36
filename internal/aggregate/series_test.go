package aggregate

import (
	"reflect"
	"testing"
)

func TestSeriesTotalsSumAcrossRounds(t *testing.T) {
	var series Series
	series.AddRound(Result{Scores: map[string]int64{"Slaviax": 100, "Kret": 50}})
	series.AddRound(Result{Scores: map[string]int64{"Slaviax": 200}})
	series.AddRound(Result{Scores: map[string]int64{"Slaviax": 0, "Kret": 25}})

	totals := series.Totals()
	want := map[string]int64{"Slaviax": 300, "Kret": 75}
	if !reflect.DeepEqual(totals, want) {
		t.Errorf("totals = %v, want %v", totals, want)
	}
	if series.Len() != 3 {
		t.Errorf("len = %d, want 3", series.Len())
	}
}

func TestSeriesUnresolvedUnion(t *testing.T) {
	var series Series
	series.AddRound(Result{Unresolved: []string{"Kret"}})
	series.AddRound(Result{Unresolved: []string{"Kret", "Zenek"}})

	if got := series.Unresolved(); !reflect.DeepEqual(got, []string{"Kret", "Zenek"}) {
		t.Errorf("unresolved = %v, want deduplicated union", got)
	}
}

func TestSeriesRoundsAreCopied(t *testing.T) {
	var series Series
	series.AddRound(Result{Scores: map[string]int64{"A": 1}})
	rounds := series.Rounds()
	rounds[0] = Result{}
	if series.Rounds()[0].Scores["A"] != 1 {
		t.Error("mutating the returned slice must not affect the series")
	}
}
