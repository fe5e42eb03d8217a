package v1

import (
	"errors"
	"net/http"

	"github.com/tinoosan/finledger/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, field, msg string) {
	toJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Code: "invalid_argument", Field: field})
}

func unauthorized(w http.ResponseWriter) {
	writeErr(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
}

// errorKinds maps domain sentinels to HTTP status and code, checked in order.
var errorKinds = []struct {
	kind   error
	status int
	code   string
}{
	{errs.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
	{errs.ErrInvalidRange, http.StatusBadRequest, "invalid_range"},
	{errs.ErrUnprocessable, http.StatusUnprocessableEntity, "validation_error"},
	{errs.ErrNotFound, http.StatusNotFound, "not_found"},
	{errs.ErrInUse, http.StatusConflict, "in_use"},
	{errs.ErrConflict, http.StatusConflict, "conflict"},
	{errs.ErrForbidden, http.StatusForbidden, "forbidden"},
}

// writeServiceErr renders err using the domain error table; anything
// unrecognised is logged and reported as 500 without detail.
func (s *Server) writeServiceErr(w http.ResponseWriter, r *http.Request, err error) {
	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			toJSON(w, k.status, errorResponse{Error: err.Error(), Code: k.code, Field: errs.Field(err)})
			return
		}
	}
	s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	writeErr(w, http.StatusInternalServerError, "internal error", "internal_error")
}
