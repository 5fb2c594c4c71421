package utils

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly,
// while allowing extension with additional application-specific behavior.
//
// Example usage:
//
//	client := utils.NewHTTPClient("http://localhost:8080", 10*time.Second, nil)
//	resp, err := client.R().Get("/healthz")
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates an HTTPClient with the given base URL and timeout.
// A non-nil jar replaces resty's default in-memory cookie jar.
//
// Each call returns an independent client instance with its own
// configuration, connection pool, and state.
func NewHTTPClient(baseURL string, timeout time.Duration, jar http.CookieJar) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if jar != nil {
		client.SetCookieJar(jar)
	}
	return &HTTPClient{Client: client}
}
