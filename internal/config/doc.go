// Package config provides configuration loading, merging, and validation
// facilities for the gateway server and the client.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Built-in defaults
//  2. Environment variables
//  3. Command-line flags (server only; the client uses cobra)
//  4. JSON config file
//
// The main entry points are [GetStructuredConfig] for the gateway and
// [GetClientConfig] for the client.
package config
