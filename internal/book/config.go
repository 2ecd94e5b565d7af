package book

import (
	"fmt"

	"github.com/openalpha/artbook/internal/art"
)

// Config gathers the book's pool capacities (spec.md §6). Shrink
// thresholds are not exposed here: they are compile-time constants in
// internal/art, matching the spec's defaults exactly, since no component
// in this repository needs to vary them at runtime (see SPEC_FULL.md §2).
type Config struct {
	ART    art.PoolConfig
	Order  int
	Bucket int
}

// DefaultConfig matches spec.md §6's suggested defaults:
// {n4:256, n16:128, n48:64, n256:32, order:512, bucket:256}.
func DefaultConfig() Config {
	return Config{
		ART:    art.DefaultPoolConfig(),
		Order:  512,
		Bucket: 256,
	}
}

// validate rejects a config a caller clearly mistyped rather than let it
// silently produce a book with zero-capacity pools.
func (c Config) validate() error {
	if c.Order <= 0 {
		return fmt.Errorf("book: Order pool capacity must be positive, got %d", c.Order)
	}
	if c.Bucket <= 0 {
		return fmt.Errorf("book: Bucket pool capacity must be positive, got %d", c.Bucket)
	}
	return nil
}
