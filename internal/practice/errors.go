package practice

import "errors"

// Sentinel errors for the practice package.
// Use errors.Is to check: errors.Is(err, practice.ErrUnsupportedSkill)
var (
	ErrUnsupportedSkill   = errors.New("practice: unsupported skill")
	ErrInvalidDifficulty  = errors.New("practice: invalid difficulty")
	ErrInvalidConfidence  = errors.New("practice: confidence must be between 1 and 3")
	ErrInvalidIntervals   = errors.New("practice: review intervals must be positive and ascending")
	ErrInvalidAdaptPolicy = errors.New("practice: invalid adapt policy")
)
