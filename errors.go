package kdego

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kdego/blobstore"
	"github.com/hupe1980/kdego/kde"
	"github.com/hupe1980/kdego/persistence"
	"github.com/hupe1980/kdego/tree"
)

var (
	// ErrEmptyReferenceSet is returned when an estimator is built over no points.
	ErrEmptyReferenceSet = errors.New("empty reference set")

	// ErrNotFound is returned when a persisted result or dataset does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCorrupt is returned when a persisted blob fails validation.
	ErrCorrupt = errors.New("corrupt blob")
)

// ConfigurationError is the kde package's parameter error, returned by New
// for invalid tolerances, sampling parameters or kernel capabilities.
type ConfigurationError = kde.ConfigurationError

// ErrDimensionMismatch indicates a query/reference dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrInvalidPoint indicates a point with a non-finite coordinate.
type ErrInvalidPoint struct {
	Index int
	cause error
}

func (e *ErrInvalidPoint) Error() string {
	return fmt.Sprintf("invalid point %d: non-finite coordinate", e.Index)
}

func (e *ErrInvalidPoint) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, blobstore.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	for _, corrupt := range []error{
		persistence.ErrInvalidMagic,
		persistence.ErrChecksumMismatch,
		persistence.ErrCorrupt,
		persistence.ErrKindMismatch,
	} {
		if errors.Is(err, corrupt) {
			return fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
	}

	if errors.Is(err, tree.ErrEmptyDataset) {
		return fmt.Errorf("%w: %w", ErrEmptyReferenceSet, err)
	}
	var dm *tree.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	var nf *tree.ErrNonFinite
	if errors.As(err, &nf) {
		return &ErrInvalidPoint{Index: nf.Index, cause: err}
	}

	return err
}
