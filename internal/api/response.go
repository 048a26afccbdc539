// internal/api/response.go
package api

import (
	"encoding/json"
	"io"
	"net/http"

	apperrors "motor-picker/internal/common/errors"
)

type errorResponse struct {
	Error     *apperrors.StandardError `json:"error"`
	RequestID string                   `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := apperrors.As(err)
	writeJSON(w, apperrors.HTTPStatus(stdErr.Code), errorResponse{
		Error:     stdErr,
		RequestID: RequestID(r.Context()),
	})
}

// decodeBody reads the body, validates it against the operation's input
// schema and decodes it into dst.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, operationID string, dst interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return apperrors.NewParseError(err)
	}
	if s.validator != nil {
		if err := s.validator.ValidateJSON(operationID, body); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.NewParseError(err)
	}
	return nil
}

func sendBinary(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
