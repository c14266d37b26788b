package biascal

import "github.com/seqlab-cloud/biascal/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound         = domain.ErrNotFound
	ErrAlreadyExists    = domain.ErrAlreadyExists
	ErrInvalidInput     = domain.ErrInvalidInput
	ErrSampleNotFound   = domain.ErrSampleNotFound
	ErrEstimateNotFound = domain.ErrEstimateNotFound
	ErrUnknownMethod    = domain.ErrUnknownMethod
)
