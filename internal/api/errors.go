// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorKind classifies client errors for handling.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota

	// KindNetwork: no HTTP response at all (refused, DNS, timeout).
	KindNetwork

	// KindHTTPStatus: the backend answered with a non-2xx status.
	KindHTTPStatus

	// KindDecode: the body did not match the expected shape.
	KindDecode

	// KindValidation: a caller-side precondition failed; no request was sent.
	KindValidation

	// KindAuthRequired: 401 on an authenticated call. The auth bridge turns
	// this into a forced logout; it is never surfaced as an ordinary error.
	KindAuthRequired
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTPStatus:
		return "http"
	case KindDecode:
		return "decode"
	case KindValidation:
		return "validation"
	case KindAuthRequired:
		return "auth"
	default:
		return "unknown"
	}
}

// APIError is the error type returned by every Client operation.
type APIError struct {
	Kind    ErrorKind
	Status  int // HTTP status for KindHTTPStatus/KindAuthRequired, else 0
	Message string
	Cause   error
}

func (e *APIError) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("api %s error (HTTP %d): %s", e.Kind, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("api %s error (HTTP %d)", e.Kind, e.Status)
	case e.Cause != nil:
		return e.Message + ": " + e.Cause.Error()
	default:
		return e.Message
	}
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// Is matches on Kind so sentinel errors compare with errors.Is.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Message == "" || t.Message == e.Message)
}

// Sentinel errors for easy checking.
var (
	// ErrUnreachable indicates the backend gave no response at all.
	ErrUnreachable = &APIError{Kind: KindNetwork, Message: "backend unreachable"}

	// ErrAuthRequired indicates a 401 from an authenticated call.
	ErrAuthRequired = &APIError{Kind: KindAuthRequired, Status: 401, Message: "authentication required"}

	// ErrNoCredential indicates an owner-only call was attempted anonymously.
	ErrNoCredential = &APIError{Kind: KindValidation, Message: "not signed in"}

	// ErrEmptyMessage indicates an ask with a blank message.
	ErrEmptyMessage = &APIError{Kind: KindValidation, Message: "message must not be empty"}
)

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

// kindOf extracts the ErrorKind from any error.
func kindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsNetwork reports whether err is a no-response transport failure.
// The connectivity monitor uses this to decide when a re-probe is due.
func IsNetwork(err error) bool {
	return kindOf(err) == KindNetwork
}

// IsAuthRequired reports whether err is a 401 on an authenticated call.
func IsAuthRequired(err error) bool {
	return kindOf(err) == KindAuthRequired
}

// IsValidation reports whether err is a caller-side precondition failure.
func IsValidation(err error) bool {
	return kindOf(err) == KindValidation
}

// IsServerError reports whether err is a non-2xx response from the backend.
func IsServerError(err error) bool {
	return kindOf(err) == KindHTTPStatus
}

// IsDecode reports whether err is a malformed-body failure.
func IsDecode(err error) bool {
	return kindOf(err) == KindDecode
}
