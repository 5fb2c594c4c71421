// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/MKhiriev/navdash/internal/utils"
)

// CheckHTTPMethod returns a handler meant for [chi.Mux.MethodNotAllowed].
//
// It answers 405 Method Not Allowed with a JSON error body and an Allow
// header listing the methods registered for the requested path, so the
// client gets the same error shape as for every other failure. The lookup
// compares route patterns against [http.Request.URL.Path] literally; this
// router registers no parameterised routes.
//
// Usage:
//
//	router := chi.NewRouter()
//	// ... register routes ...
//	router.MethodNotAllowed(CheckHTTPMethod(router))
func CheckHTTPMethod(router *chi.Mux) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var allowed []string
		for _, route := range router.Routes() {
			if route.Pattern != r.URL.Path {
				continue
			}
			for method := range route.Handlers {
				allowed = append(allowed, method)
			}
			break
		}

		if len(allowed) == 0 {
			notFound(w, r)
			return
		}

		sort.Strings(allowed)
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		utils.WriteJSONError(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}
