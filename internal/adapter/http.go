package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/MKhiriev/navdash/internal/config"
	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/store"
	"github.com/MKhiriev/navdash/internal/utils"
	"github.com/MKhiriev/navdash/models"
	"github.com/go-resty/resty/v2"
)

const (
	authPath      = "/auth"
	bootstrapPath = "/bootstrap"
	updatePath    = "/update"
	healthPath    = "/healthz"
)

type httpGateway struct {
	client *utils.HTTPClient
	jar    *persistentJar

	logger *logger.Logger
}

// NewHTTPGateway constructs the HTTP implementation of [Gateway].
//
// It normalises the base URL from adapterCfg.HTTPAddress, restores the cookie
// jar persisted in kv and configures the resty client with the resolved base
// URL and request timeout.
func NewHTTPGateway(ctx context.Context, adapterCfg config.ClientAdapter, kv store.KVRepository, logger *logger.Logger) (Gateway, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	origin, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	jar, err := newPersistentJar(ctx, origin, kv, logger)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	client := utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout, jar)
	if adapterCfg.UserAgent != "" {
		client.SetHeader("User-Agent", adapterCfg.UserAgent)
	}

	return &httpGateway{client: client, jar: jar, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Login implements [Gateway]. It POSTs {action: login, code} to /auth.
func (h *httpGateway) Login(ctx context.Context, code string) (string, error) {
	return h.requestToken(ctx, "login", models.AuthRequest{Action: models.AuthLogin, Code: code})
}

// Refresh implements [Gateway]. The refresh cookie is attached by the jar.
func (h *httpGateway) Refresh(ctx context.Context) (string, error) {
	return h.requestToken(ctx, "refresh", models.AuthRequest{Action: models.AuthRefresh})
}

func (h *httpGateway) requestToken(ctx context.Context, op string, body models.AuthRequest) (string, error) {
	var result models.AuthResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&result).
		Post(authPath)
	if err != nil {
		return "", networkError(op, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	if result.AccessToken == "" {
		return "", fmt.Errorf("%s: %w: missing access token", op, ErrUnexpectedResponse)
	}
	return result.AccessToken, nil
}

// Logout implements [Gateway]. The local copy of the refresh cookie is
// dropped even when the request fails.
func (h *httpGateway) Logout(ctx context.Context) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.AuthRequest{Action: models.AuthLogout}).
		Post(authPath)

	if clearErr := h.jar.Clear(ctx); clearErr != nil {
		h.logger.Err(clearErr).Str("func", "*httpGateway.Logout").Msg("error clearing cookie jar")
	}

	if err != nil {
		return networkError("logout", err)
	}
	return mapHTTPError(resp)
}

// ChangeCode implements [Gateway].
func (h *httpGateway) ChangeCode(ctx context.Context, accessToken, current, next string) error {
	resp, err := h.authedRequest(ctx, accessToken).
		SetHeader("Content-Type", "application/json").
		SetBody(models.AuthRequest{Action: models.AuthUpdate, CurrentCode: current, NewCode: next}).
		Post(authPath)
	if err != nil {
		return networkError("change code", err)
	}

	return mapHTTPError(resp)
}

// Bootstrap implements [Gateway]. Slices missing from the response are
// simply absent from the returned map.
func (h *httpGateway) Bootstrap(ctx context.Context) (models.BootstrapResponse, error) {
	result := models.BootstrapResponse{}

	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get(bootstrapPath)
	if err != nil {
		return nil, networkError("bootstrap", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return result, nil
}

// Update implements [Gateway].
func (h *httpGateway) Update(ctx context.Context, accessToken string, req models.UpdateRequest) error {
	var result models.UpdateResponse

	resp, err := h.authedRequest(ctx, accessToken).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&result).
		Post(updatePath)
	if err != nil {
		return networkError("update", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	if !result.Success {
		return fmt.Errorf("update %s: %w: success flag not set", req.Type, ErrUnexpectedResponse)
	}
	return nil
}

// Ping implements [Gateway].
func (h *httpGateway) Ping(ctx context.Context) error {
	resp, err := h.client.R().
		SetContext(ctx).
		Get(healthPath)
	if err != nil {
		return networkError("ping", err)
	}

	return mapHTTPError(resp)
}

func (h *httpGateway) authedRequest(ctx context.Context, accessToken string) *resty.Request {
	return h.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken)
}
