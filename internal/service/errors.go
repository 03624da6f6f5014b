package service

import "errors"

var (
	// ErrNotFound is returned when no message or conversation matches the
	// caller's scope.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller's role is insufficient.
	ErrForbidden = errors.New("forbidden")

	// ErrUpstream is returned when an external provider call fails. The
	// upstream detail is logged server-side and never attached to this
	// error, so handlers can surface it verbatim.
	ErrUpstream = errors.New("upstream request failed")
)
