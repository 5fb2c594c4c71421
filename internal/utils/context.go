// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys,
// HTTP response writing, HTTP client initialization, id generation
// and other common operations.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// TokenIDCtxKey is the key used to store the id (jti) of the bearer token
// that authenticated the request.
//
// Example of writing a value to the context:
//
//	ctx := context.WithValue(ctx, utils.TokenIDCtxKey, claims.ID)
var TokenIDCtxKey = contextKey("tokenID")

// GetTokenIDFromContext retrieves the bearer token id from the context.
//
// Returns the id and an ok flag:
//   - ok == true : value is found, is a string and is not empty
//   - ok == false: value is missing, empty or has an unexpected type
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDCtxKey).(string)
	return tokenID, ok && tokenID != ""
}
