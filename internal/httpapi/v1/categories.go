package v1

import (
	"net/http"

	"github.com/tinoosan/finledger/internal/ledger"
)

func (req categoryRequest) apply(c *ledger.Category) {
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Type != nil {
		c.Type = ledger.CategoryType(*req.Type)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	cats, err := s.categories.List(r.Context(), userID)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryResponse(c))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) postCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c := ledger.Category{UserID: userID}
	req.apply(&c)
	c, err := s.categories.Create(r.Context(), c)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, toCategoryResponse(c))
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := s.categories.Get(r.Context(), userID, id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toCategoryResponse(c))
}

// patchCategory may flip a category's type, which re-signs its transactions.
func (s *Server) patchCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := s.categories.Get(r.Context(), userID, id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	req.apply(&c)
	if c, err = s.categories.Update(r.Context(), c); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	s.invalidate(userID)
	toJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.categories.Delete(r.Context(), userID, id); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
