package feeders

import "github.com/golobby/config/v3/pkg/feeder"

// EnvFeeder reads HubConfig's `env`-tagged fields from the process
// environment, via golobby/config's own Env feeder.
type EnvFeeder = feeder.Env

// NewEnvFeeder creates a new EnvFeeder.
func NewEnvFeeder() EnvFeeder {
	return EnvFeeder{}
}
