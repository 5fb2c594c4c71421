package utils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MKhiriev/navdash/models"
)

// WriteJSON writes data as a JSON body with statusCode and returns the number
// of body bytes written. A value that cannot be encoded yields a plain 500.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(jsonData)
}

// WriteJSONError writes an [models.ErrorResponse] carrying message with the
// given status code. Gateway handlers use it for every non-2xx reply so the
// client always receives a JSON body.
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	_, _ = WriteJSON(w, models.ErrorResponse{Error: message}, statusCode)
}
