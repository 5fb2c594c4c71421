package adapter

import "errors"

// Sentinel errors mapped from gateway responses.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")

	// ErrNetwork wraps failures that produced no HTTP response at all
	// (refused connection, DNS failure, timeout).
	ErrNetwork = errors.New("gateway unreachable")

	// ErrUnexpectedResponse is returned when a 2xx body cannot be decoded or
	// lacks a required field.
	ErrUnexpectedResponse = errors.New("unexpected gateway response")
)
