package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Catalog structure
	ErrUngroupedContinuation = errors.New("continuation line before any family marker")
	ErrNestedGroup           = errors.New("nested parenthetical group")
	ErrUnbalancedGroup       = errors.New("unbalanced parenthesis")

	// Classification
	ErrUnclassifiable = errors.New("unclassifiable name")
)
