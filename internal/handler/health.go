package handler

import "net/http"

// HandleHealth is the liveness probe.
//
// GET /health
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "OK", nil)
}
