package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/wxgate/wxgate/internal/wxerr"
)

type errorBody struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeStatus(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: status, Message: message})
}

// writeError maps the error taxonomy onto status classes: bad input and
// client misuse are 400s, unresolved locations are 404s, upstream and
// dispatch failures are 502s.
func writeError(w http.ResponseWriter, err error) {
	var (
		inputErr    *wxerr.InputError
		clientErr   *wxerr.ClientError
		upstreamErr *wxerr.UpstreamError
		dispatchErr *wxerr.DispatchError
	)

	switch {
	case errors.As(err, &inputErr), errors.As(err, &clientErr):
		writeStatus(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, wxerr.ErrNotFound):
		writeStatus(w, http.StatusNotFound, "Not found. Please try specifying coordinates instead")
	case errors.As(err, &upstreamErr), errors.As(err, &dispatchErr):
		writeStatus(w, http.StatusBadGateway, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeStatus(w, http.StatusInternalServerError, "Internal server error")
	}
}
