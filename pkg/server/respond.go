package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/datamapper/pkg/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "err", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: string(code), Message: errors.UserMessage(err)}})
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code.Category() {
	case errors.CategoryInvalid:
		return http.StatusBadRequest
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryUnavailable:
		return http.StatusServiceUnavailable
	case errors.CategoryUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
