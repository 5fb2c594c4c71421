// Package http implements the HTTP transport of the navdash gateway.
//
// It exposes route wiring, request handlers and middleware for the auth,
// bootstrap and update endpoints. Cross-cutting concerns such as bearer
// authentication, request tracing, access logging and response compression
// are handled here before requests are delegated to the service layer.
package http
