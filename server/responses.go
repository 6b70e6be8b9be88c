package server

import (
	"encoding/json"
	"net/http"

	"treats/domain/entities"

	log "github.com/sirupsen/logrus"
)

// errorBody is the uniform failure shape across all operations
type errorBody struct {
	Kind    entities.ErrorKind `json:"kind"`
	Message string             `json:"message"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// writeError translates an error kind into a status code. Unexpected failures
// are surfaced generically; the detail only goes to the log.
func writeError(w http.ResponseWriter, err error) {
	kind := entities.KindOf(err)

	var status int
	message := err.Error()
	switch kind {
	case entities.ErrorKindNotFound:
		status = http.StatusNotFound
	case entities.ErrorKindInvalidOperation:
		status = http.StatusBadRequest
	case entities.ErrorKindInsufficientFunds:
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusInternalServerError
		message = "internal error"
		log.WithError(err).Error("Operation failed unexpectedly")
	}

	writeJSON(w, status, errorResponse{
		Success: false,
		Error:   errorBody{Kind: kind, Message: message},
	})
}
