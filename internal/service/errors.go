package service

import "errors"

// Sentinel errors surfaced to the API layer. Dependency failures are
// distinguishable from validation so the caller can decide whether a retry
// makes sense.
var (
	// ErrPoolMissing: recalculation was requested for a month with no SVOD
	// pool entry. Nothing is written.
	ErrPoolMissing = errors.New("no svod pool entry for month")

	ErrInvalidMonth    = errors.New("report month must be formatted YYYY-MM")
	ErrCreatorRequired = errors.New("creator must be selected")
	ErrInvalidPool     = errors.New("pool amount must be positive")
	ErrInvalidStreams  = errors.New("platform stream count must be positive")
	ErrShareOutOfRange = errors.New("revenue share must be between 0.5 and 1.0")
	ErrAdminShareEdit  = errors.New("admin accounts do not have a revenue share")
	ErrForbidden       = errors.New("admin role required")
	ErrDuplicateImport = errors.New("import with this key was already committed")
	ErrNoRowsToImport  = errors.New("no rows to import")
)
