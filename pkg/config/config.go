// Package config reads BigMaac's environment-variable configuration and
// validates it before any arena is created.
package config

import (
	"fmt"
	"strconv"

	"github.com/xyproto/env/v2"
)

const (
	defaultMinBigmaacSize = 1 << 20        // 1 MiB
	defaultMinFrySize     = 0              // disabled: falls back to MinBigmaacSize
	defaultSizeFries      = 256 << 20      // 256 MiB
	defaultSizeBigmaac    = 4 << 30        // 4 GiB
	defaultTemplate       = "/tmp/bigmaac-XXXXXX"
	defaultFryGrain       = 64
)

// Config is the resolved, validated configuration for one process's
// BigMaac instance.
type Config struct {
	// MinBigmaacSize is the bigmaac threshold, in bytes: requests larger
	// than it get their own individual mapping rather than a fry-arena
	// block.
	MinBigmaacSize uintptr
	// MinFrySize is the fry threshold: requests larger than it (and not
	// larger than MinBigmaacSize) go to the fry arena rather than the
	// system allocator. Zero means fries are disabled and this is treated
	// as equal to MinBigmaacSize.
	MinFrySize uintptr
	// SizeFries is the total size of the fry arena's backing mapping.
	SizeFries uintptr
	// SizeBigmaac is the total size reserved for individual bigmaac
	// mappings.
	SizeBigmaac uintptr
	// Template is the os.CreateTemp-style pattern backing files are named
	// from.
	Template string
	// FryGrain is the rounding granularity for fry-arena requests. It is
	// not exposed as an environment variable by the original
	// implementation, only the five read by Load.
	FryGrain uintptr
}

// Load reads configuration from the environment, applying defaults for any
// variable that is unset or unparseable.
func Load() Config {
	c := Config{
		MinBigmaacSize: envSize("BIGMAAC_MIN_BIGMAAC_SIZE", defaultMinBigmaacSize),
		MinFrySize:     envSize("BIGMAAC_MIN_FRY_SIZE", defaultMinFrySize),
		SizeFries:      envSize("SIZE_FRIES", defaultSizeFries),
		SizeBigmaac:    envSize("SIZE_BIGMAAC", defaultSizeBigmaac),
		Template:       env.Str("BIGMAAC_TEMPLATE", defaultTemplate),
		FryGrain:       defaultFryGrain,
	}

	if c.MinFrySize == 0 {
		c.MinFrySize = c.MinBigmaacSize
	}

	return c
}

// envSize reads an environment variable as an unsigned byte count,
// falling back to def if the variable is unset or not a valid number.
// github.com/xyproto/env/v2's own numeric helpers are int-typed, which
// can't safely hold the arena sizes this module needs on all platforms,
// so only its string lookup is used here.
func envSize(name string, def uint64) uintptr {
	s := env.Str(name, "")
	if s == "" {
		return uintptr(def)
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return uintptr(def)
	}

	return uintptr(v)
}

// Validate enforces the one cross-field invariant the original
// implementation checks at startup: the fry threshold must not exceed the
// bigmaac threshold, or every fry would immediately qualify as a bigmaac
// instead.
func (c Config) Validate() error {
	if c.MinFrySize > c.MinBigmaacSize {
		return fmt.Errorf("config: BIGMAAC_MIN_FRY_SIZE (%d) must not exceed BIGMAAC_MIN_BIGMAAC_SIZE (%d)",
			c.MinFrySize, c.MinBigmaacSize)
	}
	return nil
}
