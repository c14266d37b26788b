package domain

import "errors"

var (
	// ErrNotFound signals a missing experiment.
	ErrNotFound = errors.New("experiment not found")
	// ErrAlreadyExists signals a duplicate experiment.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidInput signals input that violates the estimator preconditions.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEstimateNotFound signals that no bias estimate has been computed yet.
	ErrEstimateNotFound = errors.New("estimate not found")
	// ErrSampleNotFound signals a missing sample.
	ErrSampleNotFound = errors.New("sample not found")
	// ErrUnknownMethod signals an unsupported estimation method.
	ErrUnknownMethod = errors.New("unknown estimation method")
)
