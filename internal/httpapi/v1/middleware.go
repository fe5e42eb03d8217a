package v1

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/tinoosan/finledger/internal/ledger"
)

// userID resolves the caller. With auth enabled the token subject wins and a
// different user_id query value is forbidden; otherwise user_id is required.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("user_id"))
	sub, authed := subjectFrom(r.Context())
	if authed {
		if raw != "" {
			if id, err := uuid.Parse(raw); err != nil || id != sub {
				writeErr(w, http.StatusForbidden, "user_id does not match token subject", "forbidden")
				return uuid.Nil, false
			}
		}
		return sub, true
	}
	if raw == "" {
		badRequest(w, "user_id", "user_id is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		badRequest(w, "user_id", "invalid user_id")
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses the {id} route parameter.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "id", "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses an optional uuid query parameter.
func queryUUID(w http.ResponseWriter, r *http.Request, name string) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(w, name, "invalid "+name)
		return nil, false
	}
	return &id, true
}

// queryDate parses a YYYY-MM-DD query parameter. Missing values are reported
// only when required.
func queryDate(w http.ResponseWriter, r *http.Request, name string, required bool) (*time.Time, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		if required {
			badRequest(w, name, name+" is required")
			return nil, false
		}
		return nil, true
	}
	d, err := ledger.ParseDate(raw)
	if err != nil {
		badRequest(w, name, name+" must be YYYY-MM-DD")
		return nil, false
	}
	return &d, true
}

// queryInt parses a required integer query parameter without clamping it.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		badRequest(w, name, name+" is required")
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(w, name, name+" must be an integer")
		return 0, false
	}
	return n, true
}

// queryDecimal parses a required decimal query parameter.
func queryDecimal(w http.ResponseWriter, r *http.Request, name string) (decimal.Decimal, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		badRequest(w, name, name+" is required")
		return decimal.Decimal{}, false
	}
	d, err := decimal.Parse(raw)
	if err != nil {
		badRequest(w, name, name+" must be a decimal number")
		return decimal.Decimal{}, false
	}
	return d, true
}
