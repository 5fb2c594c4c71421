package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestGetServerVersion(t *testing.T) {
	f := newHandlerFixture(t)
	f.appInfo.EXPECT().GetAppVersion(gomock.Any()).Return("v1.4.0")

	rr := f.do(http.MethodGet, versionPath, "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/plain", rr.Header().Get("Content-Type"))
	assert.Equal(t, "v1.4.0", rr.Body.String())
}

func TestHealthz(t *testing.T) {
	f := newHandlerFixture(t)

	rr := f.do(http.MethodGet, healthPath, "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestNotFound_JSON(t *testing.T) {
	f := newHandlerFixture(t)

	rr := f.do(http.MethodGet, "/api/user/register", "", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Not Found","success":false}`, rr.Body.String())
}
