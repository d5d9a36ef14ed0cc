package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable signals a missing or empty source dataset.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrFieldCoercion signals a single field that could not be converted.
	// It is recovered where it happens and never returned by public operations.
	ErrFieldCoercion = errors.New("field coercion failure")
	// ErrRefreshRejected signals a refresh that was refused or failed upstream.
	ErrRefreshRejected = errors.New("refresh rejected")
	// ErrInvalidFilter signals a malformed facet constraint.
	ErrInvalidFilter = errors.New("invalid filter")
)

// RefreshReason classifies why a refresh was rejected.
type RefreshReason string

const (
	// RefreshReasonCredential means the caller supplied a wrong credential.
	RefreshReasonCredential RefreshReason = "credential"
	// RefreshReasonUpstream means the upstream source failed or returned nothing.
	RefreshReasonUpstream RefreshReason = "upstream"
)

// RefreshRejectedError wraps ErrRefreshRejected with the rejection reason.
type RefreshRejectedError struct {
	Reason RefreshReason
	Err    error
}

func (e *RefreshRejectedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrRefreshRejected.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", ErrRefreshRejected.Error(), e.Reason, e.Err)
}

func (e *RefreshRejectedError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRefreshRejected}
	}
	return []error{ErrRefreshRejected, e.Err}
}

// NewRefreshRejected creates a refresh rejection error.
func NewRefreshRejected(reason RefreshReason, err error) error {
	return &RefreshRejectedError{Reason: reason, Err: err}
}

// DataUnavailableError wraps ErrDataUnavailable with the dataset name.
type DataUnavailableError struct {
	Dataset string
	Err     error
}

func (e *DataUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Dataset, ErrDataUnavailable.Error())
	}
	return fmt.Sprintf("%s: %s: %v", e.Dataset, ErrDataUnavailable.Error(), e.Err)
}

func (e *DataUnavailableError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDataUnavailable}
	}
	return []error{ErrDataUnavailable, e.Err}
}

// NewDataUnavailable creates a data-unavailable error for the named dataset.
func NewDataUnavailable(dataset string, err error) error {
	return &DataUnavailableError{Dataset: dataset, Err: err}
}
