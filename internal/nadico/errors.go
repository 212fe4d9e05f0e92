package nadico

import "errors"

var (
	// ErrInvalidInput reports null or empty required input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrExpressionShape reports an illegal variant transition or composition.
	ErrExpressionShape = errors.New("illegal expression shape")
)
