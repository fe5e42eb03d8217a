package v1

import (
	"net/http"
	"time"

	"github.com/tinoosan/finledger/internal/ledger"
)

func (req currencyRequest) apply(c *ledger.Currency) {
	if req.Code != nil {
		c.Code = *req.Code
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Symbol != nil {
		c.Symbol = *req.Symbol
	}
}

func (s *Server) listCurrencies(w http.ResponseWriter, r *http.Request) {
	cs, err := s.currencies.List(r.Context())
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	out := make([]currencyResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCurrencyResponse(c))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) postCurrency(w http.ResponseWriter, r *http.Request) {
	var req currencyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var c ledger.Currency
	req.apply(&c)
	c, err := s.currencies.Create(r.Context(), c)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, toCurrencyResponse(c))
}

func (s *Server) getCurrency(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := s.currencies.Get(r.Context(), id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toCurrencyResponse(c))
}

func (s *Server) patchCurrency(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req currencyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := s.currencies.Get(r.Context(), id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	req.apply(&c)
	if c, err = s.currencies.Update(r.Context(), c); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toCurrencyResponse(c))
}

// deleteCurrency is refused while exchange rates reference the currency.
func (s *Server) deleteCurrency(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.currencies.Delete(r.Context(), id); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listRates(w http.ResponseWriter, r *http.Request) {
	var f ledger.ExchangeRateFilter
	var ok bool
	if f.BaseCurrencyID, ok = queryUUID(w, r, "base"); !ok {
		return
	}
	if f.TargetCurrencyID, ok = queryUUID(w, r, "target"); !ok {
		return
	}
	rates, err := s.currencies.ListRates(r.Context(), f)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	out := make([]rateResponse, 0, len(rates))
	for _, rt := range rates {
		out = append(out, toRateResponse(rt))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) postRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var rt ledger.ExchangeRate
	if err := req.apply(&rt); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	rt, err := s.currencies.CreateRate(r.Context(), rt)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, toRateResponse(rt))
}

func (s *Server) getRate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rt, err := s.currencies.GetRate(r.Context(), id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toRateResponse(rt))
}

func (s *Server) patchRate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req rateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rt, err := s.currencies.GetRate(r.Context(), id)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	if err := req.apply(&rt); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	if rt, err = s.currencies.UpdateRate(r.Context(), rt); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toRateResponse(rt))
}

func (s *Server) deleteRate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.currencies.DeleteRate(r.Context(), id); err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// convert handles GET /v1/exchange-rates/convert?base=&target=&amount=[&date=].
func (s *Server) convert(w http.ResponseWriter, r *http.Request) {
	base, ok := queryUUID(w, r, "base")
	if !ok {
		return
	}
	target, ok := queryUUID(w, r, "target")
	if !ok {
		return
	}
	if base == nil || target == nil {
		field := "base"
		if base != nil {
			field = "target"
		}
		badRequest(w, field, field+" is required")
		return
	}
	amount, ok := queryDecimal(w, r, "amount")
	if !ok {
		return
	}
	day, ok := queryDate(w, r, "date", false)
	if !ok {
		return
	}
	var on time.Time
	if day != nil {
		on = *day
	}
	c, err := s.currencies.Convert(r.Context(), *base, *target, amount, on)
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toConversionResponse(c))
}
