package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/docsmith/pkg/errors"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// httpStatus maps an error code to an HTTP status.
func httpStatus(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidLanguage, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound, errors.ErrCodeReferenceNotFound:
		return http.StatusNotFound
	case errors.ErrCodeBusy:
		return http.StatusServiceUnavailable
	case errors.ErrCodeParse, errors.ErrCodeSelfReference, errors.ErrCodeUnsupportedTarget,
		errors.ErrCodeCircularReference, errors.ErrCodeInfiniteLoop:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, httpStatus(code), errorResponse{Code: string(code), Message: errors.UserMessage(err)})
}
