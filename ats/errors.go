package ats

import "errors"

var (
	// ErrInvalidWeights is returned when weights are negative or sum to zero.
	ErrInvalidWeights = errors.New("ats weights must be non-negative with a positive sum")

	// ErrInvalidRecommendationLimit is returned for a negative recommendation limit.
	ErrInvalidRecommendationLimit = errors.New("recommendation limit cannot be negative")
)
