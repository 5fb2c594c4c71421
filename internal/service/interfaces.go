package service

import (
	"context"

	"github.com/MKhiriev/navdash/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// AuthService guards the gateway with the shared auth code and issues the
// access and refresh tokens.
type AuthService interface {
	// EnsureCode seeds the stored code hash from configuration on first start.
	EnsureCode(ctx context.Context) error

	// Login checks code and issues a fresh token pair.
	Login(ctx context.Context, code string) (models.TokenPair, error)

	// Refresh exchanges a valid refresh token for a new pair. The refresh
	// token is rotated on every call.
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)

	// ChangeCode replaces the stored code after re-checking current.
	ChangeCode(ctx context.Context, current, next string) error

	// ParseAccessToken verifies a bearer token presented on an API call.
	ParseAccessToken(ctx context.Context, accessToken string) (models.TokenClaims, error)
}

// DataService stores the per-slice snapshots served by the gateway.
type DataService interface {
	// Bootstrap returns every stored slice. Slices never written are absent.
	Bootstrap(ctx context.Context) (models.BootstrapResponse, error)

	// Update replaces the stored value of one slice.
	Update(ctx context.Context, req models.UpdateRequest) error
}

// DataServiceWrapper defines middleware composition for DataService.
// Implementations wrap an existing DataService to add behavior such as
// logging or validating.
type DataServiceWrapper interface {
	Wrap(DataService) DataService // returns a decorated DataService applying additional behavior
}

// AppInfoService reports build metadata of the running binary.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	GetBuildInfo(ctx context.Context) models.AppBuildInfo
}
