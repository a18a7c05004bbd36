package identity

import "context"

// Member is one known community member the resolver can match against.
type Member struct {
	ID          string
	DisplayName string
	// Aliases holds historical or alternate names. The current DisplayName
	// always wins a similarity tie against an alias.
	Aliases []string
}

// Directory enumerates the known members of a community. Implementations are
// read-only; the session manager refreshes the listing before each capture
// session starts.
type Directory interface {
	Members(ctx context.Context, communityID string) ([]Member, error)
}

// StaticDirectory serves a fixed member list for every community. It backs the
// CLI (roster files) and tests.
type StaticDirectory []Member

func (d StaticDirectory) Members(context.Context, string) ([]Member, error) {
	members := make([]Member, len(d))
	copy(members, d)
	return members, nil
}
