package strategy

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config carries the chunking parameters shared by all strategies. Sizes
// are measured in words. Semantic validation of the values is the caller's
// concern; the engine only checks what it cannot work without.
type Config struct {
	// Strategy selects the splitting algorithm: semantic, toc or
	// fixed_size.
	Strategy string `yaml:"strategy" json:"strategy"`

	// MaxChunkSize is the soft upper bound on chunk size. A single element
	// larger than this may remain oversized after best-effort splitting.
	MaxChunkSize int `yaml:"max_chunk_size" json:"max_chunk_size"`

	// OverlapTokens is how much trailing content is repeated at the start
	// of the next chunk to preserve context across a split.
	OverlapTokens int `yaml:"overlap_tokens" json:"overlap_tokens"`

	// MinChunkSize is the lower bound below which chunks are merged with
	// their neighbors during post-processing.
	MinChunkSize int `yaml:"min_chunk_size" json:"min_chunk_size"`

	// TrackReferences enables cross-reference indexing and resolution.
	TrackReferences bool `yaml:"track_references" json:"track_references"`
}

// DefaultConfig returns the default chunking configuration.
func DefaultConfig() Config {
	return Config{
		Strategy:        StrategySemantic,
		MaxChunkSize:    2048,
		OverlapTokens:   200,
		MinChunkSize:    500,
		TrackReferences: true,
	}
}

// ParseConfig unmarshals a YAML (or JSON) configuration document on top of
// the defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing chunking config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the parts of the configuration the engine depends on.
func (c Config) Validate() error {
	if _, ok := factories[c.Strategy]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Strategy)
	}
	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("max_chunk_size must be positive, got %d", c.MaxChunkSize)
	}
	if c.OverlapTokens < 0 || c.MinChunkSize < 0 {
		return fmt.Errorf("overlap_tokens and min_chunk_size must not be negative")
	}
	return nil
}
