// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package spanstore

import "errors"

// The query surface reports a single error kind; these sentinels are
// the causes it wraps.
var (
	// ErrStorageUnavailable marks a backend that failed or timed out.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidTTL marks a time-to-live of zero or fewer seconds.
	ErrInvalidTTL = errors.New("invalid ttl")

	// ErrInvalidArgument marks a malformed order, adjust or id value.
	ErrInvalidArgument = errors.New("invalid argument")
)

// QueryError is the single error kind that reaches the caller of the
// query surface. It carries a human-readable message and wraps the
// underlying cause.
type QueryError struct {
	Msg string
	Err error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// WrapQueryError attaches the boundary message to a cause, leaving an
// existing QueryError untouched.
func WrapQueryError(msg string, err error) error {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return err
	}
	return &QueryError{Msg: msg, Err: err}
}
