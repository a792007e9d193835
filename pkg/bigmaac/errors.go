package bigmaac

import "github.com/galaxy001/bigmaac-go/pkg/arena"

// ErrOutOfMemory and ErrUnknownPointer are re-exported from pkg/arena so
// callers don't need to import arena just to compare against them with
// errors.Is, or github.com/galaxy001/bigmaac-go/pkg/xerrors.AsA.
var (
	ErrOutOfMemory    = arena.ErrOutOfMemory
	ErrUnknownPointer = arena.ErrUnknownPointer
)
