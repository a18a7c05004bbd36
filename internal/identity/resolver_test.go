package identity_test

import (
	"testing"

	"tally/internal/config"
	"tally/internal/identity"
)

func newResolver() *identity.Resolver {
	return identity.NewResolver(config.Default().Matching)
}

func members() []identity.Member {
	return []identity.Member{
		{ID: "1", DisplayName: "Slaviax"},
		{ID: "2", DisplayName: "Kret", Aliases: []string{"KretPL"}},
		{ID: "3", DisplayName: "Grzegorz99", Aliases: []string{"Grzesiek"}},
	}
}

func TestResolveExactToken(t *testing.T) {
	match := newResolver().Resolve("Kret", members())
	if !match.Accepted || match.Member == nil || match.Member.ID != "2" {
		t.Fatalf("expected accepted match for Kret, got %+v", match)
	}
	if match.Score != 1 {
		t.Errorf("score = %v, want 1", match.Score)
	}
}

func TestResolveOCRMisread(t *testing.T) {
	match := newResolver().Resolve("S1aviax", members())
	if !match.Accepted || match.Member == nil || match.Member.ID != "1" {
		t.Fatalf("expected S1aviax to resolve to Slaviax, got %+v", match)
	}
}

func TestResolveAliasMatches(t *testing.T) {
	match := newResolver().Resolve("Grzesiek", members())
	if !match.Accepted || match.Member == nil || match.Member.ID != "3" {
		t.Fatalf("expected alias match, got %+v", match)
	}
	if match.Candidate != "Grzesiek" {
		t.Errorf("candidate = %q, want the alias that scored", match.Candidate)
	}
}

func TestResolveDisplayNameBeatsAliasOnTie(t *testing.T) {
	all := []identity.Member{{ID: "9", DisplayName: "Kret", Aliases: []string{"Kret"}}}
	match := newResolver().Resolve("Kret", all)
	if match.Candidate != "Kret" || !match.Accepted {
		t.Fatalf("expected display-name match, got %+v", match)
	}
}

func TestResolveReportsClosestBelowThreshold(t *testing.T) {
	match := newResolver().Resolve("Zenek", members())
	if match.Accepted || match.Member != nil {
		t.Fatalf("expected rejection for unknown token, got %+v", match)
	}
	if match.Candidate == "" || match.Score <= 0 {
		t.Errorf("expected nearest-candidate diagnostics, got %+v", match)
	}
}

func TestResolveEmptyToken(t *testing.T) {
	match := newResolver().Resolve("***", members())
	if match.Accepted || match.Candidate != "" {
		t.Fatalf("expected empty result for token with no usable characters, got %+v", match)
	}
}
