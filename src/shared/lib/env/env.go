package env

import (
	"github.com/veedubyou/audio-worker/src/shared/config/envvar"
)

type Environment string

const (
	Production  Environment = "production"
	Development Environment = "development"
	Test        Environment = "test"
)

// Get defaults to production, which is how the worker runs when a host
// application launches it directly.
func Get() Environment {
	environment := envvar.Get(envvar.ENVIRONMENT, string(Production))

	switch environment {
	case "production":
		return Production
	case "development":
		return Development
	case "test":
		return Test
	default:
		panic("Invalid environment is set: " + environment)
	}
}
