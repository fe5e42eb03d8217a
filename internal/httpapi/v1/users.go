package v1

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// selfOnly rejects access to another user's record when auth is enabled.
func selfOnly(w http.ResponseWriter, r *http.Request, id uuid.UUID) bool {
	if sub, ok := subjectFrom(r.Context()); ok && sub != id {
		writeErr(w, http.StatusForbidden, "forbidden", "forbidden")
		return false
	}
	return true
}

// postUser handles POST /v1/users.
func (s *Server) postUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := s.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, toUserResponse(u))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok || !selfOnly(w, r, id) {
		return
	}
	u, err := s.users.Get(r.Context(), id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toUserResponse(u))
}

// deleteUser handles DELETE /v1/users/{id}; everything the user owns goes with it.
func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok || !selfOnly(w, r, id) {
		return
	}
	if err := s.users.Delete(r.Context(), id); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	s.invalidate(id)
	s.idem.forget(id)
	w.WriteHeader(http.StatusNoContent)
}

// postSession handles POST /v1/sessions. It checks the credentials and, when
// auth is enabled, returns a bearer token whose subject is the user id.
func (s *Server) postSession(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := s.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	resp := sessionResponse{UserID: u.ID}
	if s.auth.enabled() {
		tok, exp, err := s.issueToken(u.ID, time.Now())
		if err != nil {
			s.writeServiceErr(w, r, err)
			return
		}
		resp.Token, resp.ExpiresAt = tok, &exp
	}
	toJSON(w, http.StatusCreated, resp)
}
