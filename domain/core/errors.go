package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrDatasetNotFound = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrChartNotFound   = fmt.Errorf("%w: chart", ErrNotFound)
	ErrColumnNotFound  = fmt.Errorf("%w: column", ErrNotFound)

	// Upload errors
	ErrInvalidUpload = errors.New("invalid upload")
	ErrEmptyDataset  = errors.New("dataset contains no rows")

	// Chart errors
	ErrInvalidChartRequest = errors.New("invalid chart request")
	ErrNoRecommendation    = errors.New("no chart recommendation for column combination")

	// Report errors
	ErrReportExport = errors.New("report export failed")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, column)
}

func NewInvalidUploadError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidUpload, reason)
}

func NewInvalidChartRequestError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidChartRequest, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidChartRequest(err error) bool {
	return errors.Is(err, ErrInvalidChartRequest)
}

func IsInvalidUpload(err error) bool {
	return errors.Is(err, ErrInvalidUpload)
}
