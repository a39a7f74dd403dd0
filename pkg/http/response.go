package http

import (
	"encoding/json"
	"net/http"
	apperrors "staybook/pkg/errors"
)

// Envelope is the top level object of every JSON response. WriteSuccess and
// WriteCreated add "success": true.
type Envelope map[string]any

type PaginatedResponse struct {
	Success    bool  `json:"success"`
	Data       any   `json:"data"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int64 `json:"offset"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError renders err as {success:false, code, message}. Errors that are
// not AppErrors never leak their text to the client.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)

	status := appErr.StatusCode()
	if status == 0 {
		status = http.StatusInternalServerError
	}

	body := appErr.Response()
	if appErr.Kind == apperrors.KindDependency && appErr.Code == apperrors.CodeInternal {
		body.Message = "Internal server error"
	}
	return WriteJSON(w, status, body)
}

func WriteSuccess(w http.ResponseWriter, body Envelope) error {
	return writeEnvelope(w, http.StatusOK, body)
}

func WriteCreated(w http.ResponseWriter, body Envelope) error {
	return writeEnvelope(w, http.StatusCreated, body)
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func WritePaginated(w http.ResponseWriter, data any, totalCount int64, limit int, offset int64) error {
	return WriteJSON(w, http.StatusOK, PaginatedResponse{
		Success:    true,
		Data:       data,
		TotalCount: totalCount,
		Limit:      limit,
		Offset:     offset,
	})
}

func writeEnvelope(w http.ResponseWriter, status int, body Envelope) error {
	if body == nil {
		body = Envelope{}
	}
	body["success"] = true
	return WriteJSON(w, status, body)
}
