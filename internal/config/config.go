// Package config provides configuration types and helpers for memsift.
package config

import (
	"errors"
	"fmt"
)

// DefaultMarker is the sentinel substring whose last occurrence in the input
// marks the start of the current run. Everything before it is trimmed unless
// the keep-all option is set.
const DefaultMarker = "=== RUN MARKER ==="

// MaxDepth is the largest accepted signature depth. Depth 0 means unlimited.
const MaxDepth = 1000

// StreamThreshold is the probed input size above which streaming mode is
// selected automatically.
const StreamThreshold = 5 * 1024 * 1024

// Config holds the application-wide configuration.
type Config struct {
	Format string    `mapstructure:"format"`
	Color  string    `mapstructure:"color"`
	Marker string    `mapstructure:"marker"`
	Depth  int       `mapstructure:"depth"`
	LLM    LLMConfig `mapstructure:"llm"`
}

// LLMConfig holds configuration for the explain command's LLM provider.
type LLMConfig struct {
	// Provider selects which LLM to use. Only "ollama" is supported.
	Provider string `mapstructure:"provider"`

	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`

	Ollama OllamaConfig `mapstructure:"ollama"`
}

// OllamaConfig holds Ollama-specific settings.
type OllamaConfig struct {
	Host  string `mapstructure:"host"`  // API endpoint
	Model string `mapstructure:"model"` // Default model name
}

// Options is the immutable per-run configuration for the filter engine.
// Build it once from flags and configuration, validate it, then treat it as
// read-only.
type Options struct {
	// Marker is the substring whose last occurrence bounds the current run.
	Marker string

	// Depth is the number of leading lines of a block that contribute to its
	// signature. 0 means all lines.
	Depth int

	// Verbose disables scrubbing during signature canonicalization, so
	// blocks differing only in addresses or counts are kept distinct.
	Verbose bool

	// KeepAll disables marker trimming entirely.
	KeepAll bool

	// ForceStream selects streaming mode regardless of input size.
	ForceStream bool

	Progress      bool
	MonitorMemory bool
}

// Validate checks the options before any processing starts.
func (o Options) Validate() error {
	if o.Depth < 0 || o.Depth > MaxDepth {
		return fmt.Errorf("depth %d out of range (0-%d, 0 = unlimited)", o.Depth, MaxDepth)
	}
	if o.Marker == "" && !o.KeepAll {
		return errors.New("marker must not be empty unless --keep-all is set")
	}
	return nil
}

// Limits are the hard per-run resource maxima. Exceeding any of them is a
// fatal condition for the whole run.
type Limits struct {
	// MaxLineBytes bounds the length of a single input line.
	MaxLineBytes int

	// MaxBlockBytes bounds the accumulated size of a single block.
	MaxBlockBytes int

	// MaxPendingBlocks bounds how many deduplicated blocks streaming mode
	// may hold while the last marker position is still unknown.
	MaxPendingBlocks int
}

// DefaultLimits returns the standard resource limits.
func DefaultLimits() Limits {
	return Limits{
		MaxLineBytes:     64 * 1024,
		MaxBlockBytes:    1024 * 1024,
		MaxPendingBlocks: 4096,
	}
}
