package logging

import "errors"

// Not-found errors: the workflow regresses to a safe earlier step and the
// user sees an inline message. Validation errors block the operation and
// leave all state untouched. Nothing here is fatal.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrChildNotFound    = errors.New("child not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrActivityNotFound = errors.New("activity not found")

	ErrNoCategorySelected      = errors.New("no category selected")
	ErrActivityOutsideCategory = errors.New("activity does not belong to the selected category")
	ErrEmptyActivityName       = errors.New("activity name cannot be empty")
	ErrNonPositiveCoins        = errors.New("activity coins must be positive")
)
