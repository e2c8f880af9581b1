// Package logging configures the process-wide zerolog logger and the
// cold-start summary emitted by each Lambda.
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LevelEnvVar selects the log level: debug, info, warn, error (default: info).
const LevelEnvVar = "COMPOSER_LOG_LEVEL"

// Init configures the global logger for interactive use: level from
// COMPOSER_LOG_LEVEL, human-readable output on stderr.
func Init() {
	zerolog.SetGlobalLevel(LevelFromEnv())
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// InitJSON configures the global logger for Lambda: level from
// COMPOSER_LOG_LEVEL, one JSON object per line on stderr so CloudWatch can
// index the fields.
func InitJSON() {
	zerolog.SetGlobalLevel(LevelFromEnv())
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// LevelFromEnv parses COMPOSER_LOG_LEVEL.
func LevelFromEnv() zerolog.Level {
	return ParseLevel(os.Getenv(LevelEnvVar))
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// EnvOrDefault returns the value of the named environment variable, or
// defaultVal if the variable is empty or unset.
func EnvOrDefault(envVar, defaultVal string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return defaultVal
}
