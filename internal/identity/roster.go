package identity

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type rosterFile struct {
	Members []rosterMember `toml:"member"`
}

type rosterMember struct {
	ID          string   `toml:"id"`
	DisplayName string   `toml:"display_name"`
	Aliases     []string `toml:"aliases"`
}

// LoadRoster reads a TOML member roster:
//
//	[[member]]
//	id = "184503"
//	display_name = "Sławek"
//	aliases = ["Slavi"]
//
// Members without a display name are rejected; a missing id falls back to the
// display name.
func LoadRoster(path string) (StaticDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}

	var file rosterFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}
	if len(file.Members) == 0 {
		return nil, fmt.Errorf("roster %s lists no members", path)
	}

	directory := make(StaticDirectory, 0, len(file.Members))
	for i, m := range file.Members {
		name := strings.TrimSpace(m.DisplayName)
		if name == "" {
			return nil, fmt.Errorf("roster %s: member %d has no display_name", path, i+1)
		}
		id := strings.TrimSpace(m.ID)
		if id == "" {
			id = name
		}
		directory = append(directory, Member{ID: id, DisplayName: name, Aliases: m.Aliases})
	}
	return directory, nil
}
