package v1

import (
	"net/http"

	"github.com/tinoosan/finledger/internal/ledger"
)

func (s *Server) listBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	bs, err := s.budgets.List(r.Context(), userID)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	out := make([]budgetResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBudgetResponse(b))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) postBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req budgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	b := ledger.Budget{UserID: userID}
	if err := req.apply(&b); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	b, err := s.budgets.Create(r.Context(), b)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, toBudgetResponse(b))
}

func (s *Server) getBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := s.budgets.Get(r.Context(), userID, id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toBudgetResponse(b))
}

// patchBudget treats "tag_id": null as clearing the tag; an absent tag_id keeps it.
func (s *Server) patchBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req budgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	b, err := s.budgets.Get(r.Context(), userID, id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	if err := req.apply(&b); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	if b, err = s.budgets.Update(r.Context(), b); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toBudgetResponse(b))
}

func (s *Server) deleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.budgets.Delete(r.Context(), userID, id); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) budgetUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := s.budgets.Usage(r.Context(), userID, id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toUsageResponse(u))
}
