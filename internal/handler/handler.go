package handler

import (
	"encoding/json"
	"net/http"

	"todoservice/internal/apperr"
	"todoservice/internal/service"
	"todoservice/internal/token"
)

// Handler holds the JSON API handlers for the token deployment.
type Handler struct {
	svc    *service.Service
	signer *token.Signer
}

// NewHandler initializes the API handler set.
func NewHandler(svc *service.Service, signer *token.Signer) *Handler {
	return &Handler{svc: svc, signer: signer}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError translates a service error into a transport response.
// Tagged kinds become 400s with the kind on the wire; anything else is
// an infra failure and surfaces as a 500 with no detail.
func writeError(w http.ResponseWriter, err error) {
	switch kind := apperr.KindOf(err); kind {
	case apperr.KindValidation, apperr.KindDuplicateUsername, apperr.KindAuth:
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   kind.String(),
			Message: err.Error(),
		})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "internal",
			Message: "internal server error",
		})
	}
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, errorResponse{
		Error:   "not_found",
		Message: "not found",
	})
}
