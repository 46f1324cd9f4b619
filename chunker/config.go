package chunker

import "fmt"

// Default chunking parameters, tuned for spoken content: shorter chunks
// lose context, longer chunks dilute search relevance.
const (
	DefaultTargetDuration = 75.0
	DefaultMinDuration    = 45.0
	DefaultMaxDuration    = 120.0
)

// Config holds the duration triple that drives segmentation.
type Config struct {
	// TargetDuration is the ideal chunk length in seconds. A chunk closes
	// once its span reaches this value.
	TargetDuration float64

	// MinDuration is the smallest acceptable chunk length. A trailing
	// remainder shorter than this is merged into the previous chunk.
	MinDuration float64

	// MaxDuration bounds worst-case chunk length. Adding a fragment that
	// would push the span past this forces a split even before the target
	// is reached.
	MaxDuration float64
}

// DefaultConfig returns a Config with the standard duration triple.
func DefaultConfig() *Config {
	return &Config{
		TargetDuration: DefaultTargetDuration,
		MinDuration:    DefaultMinDuration,
		MaxDuration:    DefaultMaxDuration,
	}
}

// Validate checks the ordering constraint 0 < min <= target <= max.
func (c *Config) Validate() error {
	if c.MinDuration <= 0 {
		return fmt.Errorf("%w: min duration must be positive, got %v", ErrInvalidConfig, c.MinDuration)
	}
	if c.TargetDuration < c.MinDuration {
		return fmt.Errorf("%w: target duration %v below min duration %v", ErrInvalidConfig, c.TargetDuration, c.MinDuration)
	}
	if c.MaxDuration < c.TargetDuration {
		return fmt.Errorf("%w: max duration %v below target duration %v", ErrInvalidConfig, c.MaxDuration, c.TargetDuration)
	}
	return nil
}
