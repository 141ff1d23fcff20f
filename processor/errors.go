package processor

import (
	"errors"
	"fmt"
)

// ErrEmptyStack is returned when no usable scenes remain to build a stack from.
var ErrEmptyStack = errors.New("no scenes available to assemble a raster stack")

type InvalidGeometryError struct {
	Reason string
}

func (e *InvalidGeometryError) Error() string {
	return fmt.Sprintf("invalid geometry: %s", e.Reason)
}

func invalidGeometry(format string, args ...interface{}) error {
	return &InvalidGeometryError{Reason: fmt.Sprintf(format, args...)}
}

type AreaExceededError struct {
	Area  float64
	Limit float64
}

func (e *AreaExceededError) Error() string {
	return fmt.Sprintf("AOI exceeds max size of %.0f km². Current: %.2f km²", e.Limit, e.Area)
}

// AssetResolutionError reports an item whose band assets could not be
// resolved into retrievable sources.
type AssetResolutionError struct {
	ItemID  string
	Missing []string
	Err     error
}

func (e *AssetResolutionError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("item %s: missing assets %v", e.ItemID, e.Missing)
	}
	return fmt.Sprintf("item %s: asset resolution failed: %v", e.ItemID, e.Err)
}

func (e *AssetResolutionError) Unwrap() error {
	return e.Err
}

type RetrievalError struct {
	ItemID string
	Band   string
	Window Window
	Err    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieving band %s of item %s at %v: %v", e.Band, e.ItemID, e.Window, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Pipeline stage names used in StageError.
const (
	StageValidate    = "validate"
	StageSearch      = "search"
	StageDeduplicate = "deduplicate"
	StageSign        = "sign"
	StageAssemble    = "assemble"
	StageMaterialize = "materialize"
)

// StageError tags an error with the pipeline stage it occurred in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
