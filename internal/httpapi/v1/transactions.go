package v1

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tinoosan/finledger/internal/ledger"
)

// transactionFilter reads the list filters. from and to are inclusive calendar dates.
func transactionFilter(w http.ResponseWriter, r *http.Request) (ledger.TransactionFilter, bool) {
	var f ledger.TransactionFilter
	var ok bool
	if f.From, ok = queryDate(w, r, "from", false); !ok {
		return f, false
	}
	to, ok := queryDate(w, r, "to", false)
	if !ok {
		return f, false
	}
	if f.From != nil && to != nil && f.From.After(*to) {
		toJSON(w, http.StatusBadRequest, errorResponse{Error: "from must not be after to", Code: "invalid_range", Field: "from"})
		return f, false
	}
	if to != nil {
		end := to.AddDate(0, 0, 1)
		f.To = &end
	}
	if f.AccountID, ok = queryUUID(w, r, "account_id"); !ok {
		return f, false
	}
	if f.CategoryID, ok = queryUUID(w, r, "category_id"); !ok {
		return f, false
	}
	if f.TagID, ok = queryUUID(w, r, "tag_id"); !ok {
		return f, false
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		typ := ledger.CategoryType(strings.ToUpper(raw))
		if !typ.Valid() {
			badRequest(w, "type", "type must be INCOME or EXPENSE")
			return f, false
		}
		f.Type = &typ
	}
	return f, true
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	f, ok := transactionFilter(w, r)
	if !ok {
		return
	}
	txs, err := s.transactions.List(r.Context(), userID, f)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var idem, bodyHash string
	if key := strings.TrimSpace(r.Header.Get(idempotencyHeader)); key != "" {
		idem, bodyHash = idemKey(userID, key), requestHash(req)
		if s.idem.replay(w, idem, bodyHash) {
			return
		}
	}
	tx := ledger.Transaction{UserID: userID}
	if err := req.apply(&tx); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	tx, err := s.transactions.Create(r.Context(), tx)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	s.invalidate(userID)
	if idem == "" {
		toJSON(w, http.StatusCreated, toTransactionResponse(tx))
		return
	}
	payload, err := json.Marshal(toTransactionResponse(tx))
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	payload = append(payload, '\n')
	s.idem.put(idem, storedResponse{BodyHash: bodyHash, Status: http.StatusCreated, Payload: payload})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(payload)
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tx, err := s.transactions.Get(r.Context(), userID, id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) patchTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx, err := s.transactions.Get(r.Context(), userID, id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	if err := req.apply(&tx); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	if tx, err = s.transactions.Update(r.Context(), tx); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	s.invalidate(userID)
	toJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.transactions.Delete(r.Context(), userID, id); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	s.invalidate(userID)
	w.WriteHeader(http.StatusNoContent)
}
