package feeders

import (
	"github.com/golobby/config/v3/pkg/feeder"
)

// TomlFeeder reads a HubConfig from a TOML file, via golobby/config's own
// Toml feeder.
type TomlFeeder struct {
	feeder.Toml
}

// NewTomlFeeder creates a new TomlFeeder reading filePath.
func NewTomlFeeder(filePath string) TomlFeeder {
	return TomlFeeder{feeder.Toml{Path: filePath}}
}
