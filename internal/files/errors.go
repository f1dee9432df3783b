package files

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound means no file exists under the requested id.
	ErrNotFound = errors.New("file not found")
	// ErrGone means the file is mid-deletion and no longer served.
	ErrGone = errors.New("file has been deleted")
	// ErrUnauthorized means the caller may not access the payload.
	ErrUnauthorized = errors.New("unauthorized to access this file")
	// ErrQuotaExceeded means the owner's storage ceiling would be crossed.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrFileTooLarge means the payload exceeds the absolute size ceiling.
	ErrFileTooLarge = errors.New("file size exceeds maximum limit")
)

// RangeError reports an unsatisfiable byte range. Length carries the
// total payload size so clients can retry with a valid range.
type RangeError struct {
	Length int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range not satisfiable for length %d", e.Length)
}

// StorageLimitError marks a storage-layer fault whose signature matches
// a known backend write-size ceiling. Remediation lives in config, not
// code, so the message names the knobs.
type StorageLimitError struct {
	Cause error
}

func (e *StorageLimitError) Error() string {
	return "payload exceeds the backend write-size limit; raise max_allowed_packet (MySQL) or check the column size ceiling (Postgres)"
}

func (e *StorageLimitError) Unwrap() error { return e.Cause }

var writeLimitSignatures = []string{
	"max_allowed_packet",
	"packet for query is too large",
	"exceeds the maximum allowed",
	"invalid memory alloc request size",
}

// classifyStorageErr wraps faults that match a known backend
// write-size-limit signature so handlers can surface the remediation
// hint; everything else passes through.
func classifyStorageErr(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range writeLimitSignatures {
		if strings.Contains(msg, sig) {
			return &StorageLimitError{Cause: err}
		}
	}
	return err
}
