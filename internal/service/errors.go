package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// client side
	ErrCodeRequired      = errors.New("auth code is required")
	ErrInvalidCode       = errors.New("invalid auth code")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrAuthExpired       = errors.New("session expired, log in again")
	ErrRejected          = errors.New("update rejected by gateway")
	ErrSyncInProgress    = errors.New("sync already in progress")
	ErrCoordinatorClosed = errors.New("sync coordinator closed")

	// gateway side
	ErrWrongCode               = errors.New("wrong auth code")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrCodeNotConfigured       = errors.New("auth code is not configured")
	ErrVersionIsNotSpecified   = errors.New("app version is not specified")
)
