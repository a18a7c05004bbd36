package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tally/internal/store"
	"tally/internal/testsupport"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	s, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRecord() store.Record {
	return store.Record{
		SessionID:   "sess-1",
		CommunityID: "guild",
		OwnerID:     "alice",
		Workflow:    "clash",
		CompletedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		Totals:      map[string]int64{"Slaviax": 300, "Kret": 75},
		Rounds: []map[string]int64{
			{"Slaviax": 100, "Kret": 50},
			{"Slaviax": 200, "Kret": 25},
		},
		Unresolved: []string{"Zenek"},
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if err := s.SaveCapture(ctx, sampleRecord()); err != nil {
		t.Fatalf("SaveCapture: %v", err)
	}

	summaries, err := s.ListRecent(ctx, "guild", 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("summaries = %v, want one", summaries)
	}
	if summaries[0].Names != 2 || summaries[0].Workflow != "clash" {
		t.Errorf("summary = %+v", summaries[0])
	}

	record, err := s.LoadRecord(ctx, summaries[0].ID)
	if err != nil {
		t.Fatalf("LoadRecord: %v", err)
	}
	if record.Totals["Slaviax"] != 300 || record.Totals["Kret"] != 75 {
		t.Errorf("totals = %v", record.Totals)
	}
	if len(record.Rounds) != 2 || record.Rounds[1]["Slaviax"] != 200 {
		t.Errorf("rounds = %v", record.Rounds)
	}
	if len(record.Unresolved) != 1 || record.Unresolved[0] != "Zenek" {
		t.Errorf("unresolved = %v", record.Unresolved)
	}
}

func TestListRecentFiltersByCommunity(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	first := sampleRecord()
	if err := s.SaveCapture(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := sampleRecord()
	second.CommunityID = "other"
	if err := s.SaveCapture(ctx, second); err != nil {
		t.Fatal(err)
	}

	summaries, err := s.ListRecent(ctx, "other", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 || summaries[0].CommunityID != "other" {
		t.Errorf("summaries = %+v, want the other community only", summaries)
	}

	all, err := s.ListRecent(ctx, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("all communities = %d rows, want 2", len(all))
	}
}

func TestLoadRecordMissing(t *testing.T) {
	s := openStore(t)
	if _, err := s.LoadRecord(context.Background(), 42); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestOpenRefusesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer first.Close()

	if _, err := store.Open(cfg); err == nil {
		t.Fatal("expected second Open on the same state dir to fail")
	}
}
