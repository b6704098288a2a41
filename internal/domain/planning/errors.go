package planning

import "errors"

// Domain errors for planning inputs

var (
	// Catalog entry validation errors
	ErrDishMissingID     = errors.New("dish id is required")
	ErrDishMissingName   = errors.New("dish name is required")
	ErrDishServingBounds = errors.New("dish serving bounds must satisfy 1 <= min <= max")
	ErrDishStorageDays   = errors.New("dish storage days cannot be negative")
	ErrDishNoSlots       = errors.New("dish must allow at least one meal slot")

	// Request validation errors
	ErrHorizonOutOfRange  = errors.New("horizon must be between 1 and 7 days")
	ErrPeopleOutOfRange   = errors.New("household size must be between 1 and 6")
	ErrNoEnabledSlots     = errors.New("at least one meal slot must be enabled")
	ErrCategoryBounds     = errors.New("category bounds must satisfy 0 <= min <= max")
	ErrUnknownVariety     = errors.New("unknown variety level")
	ErrUnknownBatchLevel  = errors.New("unknown batch cooking level")
	ErrOwnedAmountInvalid = errors.New("owned ingredient amount cannot be negative")
)
