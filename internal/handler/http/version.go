package http

import (
	"net/http"

	"github.com/MKhiriev/navdash/internal/utils"
)

func (h *Handler) getServerVersion(w http.ResponseWriter, r *http.Request) {
	serverVersion := h.services.AppInfoService.GetAppVersion(r.Context())

	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(serverVersion))
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func notFound(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONError(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}
