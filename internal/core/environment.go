package core

import (
	"errors"

	"github.com/rs/zerolog"
)

type Environment string

const (
	DevelopmentEnv Environment = "development"
	ProductionEnv  Environment = "production"
)

var errUnknownEnvironment = errors.New("environment must be either 'development' or 'production'")

// ParseEnvironment validates the value passed through the --env flag
func ParseEnvironment(s string) (Environment, error) {
	env := Environment(s)
	if !env.IsDevelopment() && !env.IsProduction() {
		return "", errUnknownEnvironment
	}
	return env, nil
}

func (e Environment) IsProduction() bool {
	return e == ProductionEnv
}

func (e Environment) IsDevelopment() bool {
	return e == DevelopmentEnv
}

// LogLevel is debug for development and info otherwise
func (e Environment) LogLevel() zerolog.Level {
	if e.IsDevelopment() {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
