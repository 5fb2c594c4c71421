package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/utils"
	"github.com/MKhiriev/navdash/models"
)

// bootstrap serves GET /bootstrap with every stored slice. It needs no
// token: the payload is the same for every caller of this single-tenant
// gateway.
func (h *Handler) bootstrap(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	slices, err := h.services.DataService.Bootstrap(r.Context())
	if err != nil {
		log.Err(err).Str("func", "*Handler.bootstrap").Msg("error reading slices")
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, slices, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.update").Msg("Invalid JSON was passed")
		utils.WriteJSONError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.DataService.Update(ctx, req); err != nil {
		log.Err(err).Str("func", "*Handler.update").Str("slice", req.Type.String()).Msg("error updating slice")
		writeError(w, err)
		return
	}

	tokenID, _ := utils.GetTokenIDFromContext(ctx)
	log.Info().Str("slice", req.Type.String()).Str("token_id", tokenID).Msg("slice updated")
	utils.WriteJSON(w, models.UpdateResponse{Success: true}, http.StatusOK)
}
