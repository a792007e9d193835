// Package policy decides which allocator class a requested size belongs to
// and how that size gets rounded before an arena carves a block for it.
package policy

import "github.com/galaxy001/bigmaac-go/pkg/xunsafe/layout"

// Class is which allocator handles a request of a given size.
type Class uint8

const (
	// System requests are small enough to fall straight through to Go's
	// own runtime allocator.
	System Class = iota
	// Fry requests are served from the shared fry arena.
	Fry
	// Bigmaac requests get their own individual file-backed mapping.
	Bigmaac
)

func (c Class) String() string {
	switch c {
	case Fry:
		return "fry"
	case Bigmaac:
		return "bigmaac"
	default:
		return "system"
	}
}

// Policy holds the size thresholds and rounding grains that Classify and
// Round apply. The zero value is not usable; construct one from a
// validated pkg/config.Config.
type Policy struct {
	MinFry     uintptr
	MinBigmaac uintptr
	FryGrain   uintptr
	PageSize   uintptr
}

// Classify maps a requested size to the class that should serve it.
//
// Both thresholds are exclusive: a request exactly equal to MinFry or
// MinBigmaac still falls through to the next class down, matching the
// original implementation's "size > threshold" checks.
func (p Policy) Classify(size uintptr) Class {
	switch {
	case size > p.MinBigmaac:
		return Bigmaac
	case size > p.MinFry:
		return Fry
	default:
		return System
	}
}

// Round rounds size up to the grain appropriate for class: the page size
// for Bigmaac requests (since each gets its own mapping) and the fry grain
// for Fry requests (since they share one arena). System requests are
// returned unchanged; Go's own allocator does its own size-classing.
func (p Policy) Round(class Class, size uintptr) uintptr {
	switch class {
	case Bigmaac:
		return layout.RoundUp(size, p.PageSize)
	case Fry:
		return layout.RoundUp(size, p.FryGrain)
	default:
		return size
	}
}
