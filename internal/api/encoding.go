package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fxamacker/cbor/v2"

	"github.com/onnwee/ideamatch/internal/match"
)

// writeResponse encodes v as CBOR when the client accepts application/cbor
// and as JSON otherwise.
func writeResponse(w http.ResponseWriter, r *http.Request, status int, v any) {
	contentType := "application/json"
	var data []byte
	var err error
	if match.IsCBOR(r.Header.Get("Accept")) {
		contentType = match.ContentTypeCBOR
		data, err = cbor.Marshal(v)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Failed to encode response")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Add("Vary", "Accept")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}

// StatusResponse is the body of GET /.
type StatusResponse struct {
	Status string `json:"status" cbor:"status"`
}

// Root handles GET / with a fixed liveness payload.
func Root(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, r, http.StatusOK, StatusResponse{Status: "ML service running"})
}
