package progress

import (
	"os"

	"github.com/example/tapspeak/internal/srs"
)

// DefaultResetPIN guards the reset flow against accidental taps. It is not a
// privacy mechanism.
const DefaultResetPIN = "1234"

// Config holds the engine configuration.
type Config struct {
	// ResetPIN must match the pin supplied to ResetUser.
	ResetPIN string
	// Intervals is the stage-interval table used by the scheduler.
	Intervals srs.IntervalTable
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		ResetPIN:  DefaultResetPIN,
		Intervals: srs.StandardIntervals,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back to
// defaults. RESET_PIN overrides the pin; SRS_INTERVALS selects the interval
// table ("standard" or "extended").
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if pin := os.Getenv("RESET_PIN"); pin != "" {
		cfg.ResetPIN = pin
	}
	if os.Getenv("SRS_INTERVALS") == "extended" {
		cfg.Intervals = srs.ExtendedIntervals
	}
	return cfg
}
