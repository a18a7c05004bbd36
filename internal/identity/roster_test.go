package identity_test

import (
	"os"
	"path/filepath"
	"testing"

	"tally/internal/identity"
)

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	return path
}

func TestLoadRoster(t *testing.T) {
	path := writeRoster(t, `
[[member]]
id = "10"
display_name = "Sławek"
aliases = ["Slavi", "Slav"]

[[member]]
display_name = "Darek"
`)

	roster, err := identity.LoadRoster(path)
	if err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("len = %d, want 2", len(roster))
	}
	if roster[0].ID != "10" || roster[0].DisplayName != "Sławek" || len(roster[0].Aliases) != 2 {
		t.Fatalf("first member = %+v", roster[0])
	}
	if roster[1].ID != "Darek" {
		t.Fatalf("missing id should fall back to display name, got %q", roster[1].ID)
	}
}

func TestLoadRosterRejectsNamelessMember(t *testing.T) {
	path := writeRoster(t, `
[[member]]
id = "10"
`)
	if _, err := identity.LoadRoster(path); err == nil {
		t.Fatal("expected error for member without display_name")
	}
}

func TestLoadRosterRejectsEmptyFile(t *testing.T) {
	path := writeRoster(t, "")
	if _, err := identity.LoadRoster(path); err == nil {
		t.Fatal("expected error for empty roster")
	}
}
