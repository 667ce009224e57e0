package plan

import "errors"

// Slot table errors
var (
	ErrEmptySlotTable    = errors.New("slot table must contain at least one slot")
	ErrUnknownSlot       = errors.New("unknown meal slot")
	ErrDuplicateSlot     = errors.New("duplicate meal slot")
	ErrSlotOrder         = errors.New("meal slots must follow the order of the day")
	ErrInvalidPercentage = errors.New("slot calorie percentage must be positive")
	ErrPercentageSum     = errors.New("slot calorie percentages must sum to 1")
	ErrUnknownSlotTable  = errors.New("unknown slot table")

	ErrSlotNotInPlan       = errors.New("meal slot not present in plan")
	ErrFingerprintMismatch = errors.New("plan was generated for a different profile")
)
