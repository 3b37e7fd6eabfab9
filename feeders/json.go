package feeders

import (
	"github.com/golobby/config/v3/pkg/feeder"
)

// JsonFeeder reads a HubConfig from a JSON file, via golobby/config's own
// Json feeder.
type JsonFeeder struct {
	feeder.Json
}

// NewJsonFeeder creates a new JsonFeeder reading filePath.
func NewJsonFeeder(filePath string) JsonFeeder {
	return JsonFeeder{feeder.Json{Path: filePath}}
}
