package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/cache"
	"github.com/tinoosan/finledger/internal/ledger"
	"github.com/tinoosan/finledger/internal/storage/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type errResp struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field"`
}

type dailyResp struct {
	Day     string `json:"day"`
	Balance string `json:"balance"`
}

type fixture struct {
	store   *memory.Store
	h       http.Handler
	userID  uuid.UUID
	account ledger.Account
	income  ledger.Category
	expense ledger.Category
}

func setupWith(t *testing.T, opts Options) fixture {
	t.Helper()
	store := memory.New()
	user := ledger.User{ID: uuid.New(), Email: "owner@example.com"}
	store.SeedUser(user)
	account := ledger.Account{ID: uuid.New(), UserID: user.ID, Name: "Cash"}
	income := ledger.Category{ID: uuid.New(), UserID: user.ID, Name: "Salary", Type: ledger.CategoryTypeIncome}
	expense := ledger.Category{ID: uuid.New(), UserID: user.ID, Name: "Food", Type: ledger.CategoryTypeExpense}
	store.SeedAccount(account)
	store.SeedCategory(income)
	store.SeedCategory(expense)
	if opts.Logger == nil {
		opts.Logger = testLogger()
	}
	return fixture{store: store, h: New(store, opts).Handler(), userID: user.ID, account: account, income: income, expense: expense}
}

func setup(t *testing.T) fixture { return setupWith(t, Options{}) }

func do(t *testing.T, h http.Handler, method, path string, body any, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func (f fixture) q(path string) string { return path + "?user_id=" + f.userID.String() }

func (f fixture) postTx(t *testing.T, cat ledger.Category, amount string, at time.Time) transactionResponse {
	t.Helper()
	rec := do(t, f.h, http.MethodPost, f.q("/v1/transactions"), map[string]any{
		"account_id": f.account.ID, "category_id": cat.ID, "amount": amount, "date": at.Format(time.RFC3339),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decode[transactionResponse](t, rec)
}

func TestHealthAndReady(t *testing.T) {
	f := setup(t)
	for _, p := range []string{"/healthz", "/readyz"} {
		if rec := do(t, f.h, http.MethodGet, p, nil); rec.Code != http.StatusOK {
			t.Fatalf("%s expected 200, got %d", p, rec.Code)
		}
	}
	rec := do(t, f.h, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ledger_http_requests_total") {
		t.Fatalf("metrics not exposed: %d", rec.Code)
	}
}

func TestUsers_RegisterDuplicateAndContentType(t *testing.T) {
	f := setup(t)
	body := map[string]any{"email": "New@Example.com", "password": "correct horse"}
	rec := do(t, f.h, http.MethodPost, "/v1/users", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	u := decode[userResponse](t, rec)
	if u.Email != "new@example.com" {
		t.Fatalf("email not normalised: %q", u.Email)
	}

	rec = do(t, f.h, http.MethodPost, "/v1/users", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate expected 409, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/users", strings.NewReader(`{"email":"x@example.com","password":"longenough"}`))
	req.Header.Set("Content-Type", "text/plain")
	rr := httptest.NewRecorder()
	f.h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rr.Code)
	}

	rec = do(t, f.h, http.MethodPost, "/v1/sessions", map[string]any{"email": "new@example.com", "password": "wrong password"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("bad credentials expected 403, got %d", rec.Code)
	}
	rec = do(t, f.h, http.MethodPost, "/v1/sessions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("session expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if s := decode[sessionResponse](t, rec); s.UserID != u.ID || s.Token != "" {
		t.Fatalf("unexpected session without auth: %+v", s)
	}
}

func TestUserID_Required(t *testing.T) {
	f := setup(t)
	rec := do(t, f.h, http.MethodGet, "/v1/accounts", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if e := decode[errResp](t, rec); e.Code != "invalid_argument" || e.Field != "user_id" {
		t.Fatalf("unexpected error: %+v", e)
	}
	rec = do(t, f.h, http.MethodGet, "/v1/accounts?user_id=nope", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed user_id, got %d", rec.Code)
	}
}

func TestAccounts_CRUDAndInUse(t *testing.T) {
	f := setup(t)
	rec := do(t, f.h, http.MethodPost, f.q("/v1/accounts"), map[string]any{"name": "Savings"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	acc := decode[accountResponse](t, rec)

	rec = do(t, f.h, http.MethodPost, f.q("/v1/accounts"), map[string]any{"name": "savings"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate name expected 409, got %d", rec.Code)
	}

	rec = do(t, f.h, http.MethodPatch, f.q("/v1/accounts/"+acc.ID.String()), map[string]any{"description": "rainy day"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[accountResponse](t, rec); got.Name != "Savings" || got.Description != "rainy day" {
		t.Fatalf("patch lost fields: %+v", got)
	}

	f.postTx(t, f.expense, "5.00", time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))
	rec = do(t, f.h, http.MethodDelete, f.q("/v1/accounts/"+f.account.ID.String()), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete referenced account expected 409, got %d", rec.Code)
	}
	if e := decode[errResp](t, rec); e.Code != "in_use" {
		t.Fatalf("expected in_use, got %q", e.Code)
	}
	if rec := do(t, f.h, http.MethodDelete, f.q("/v1/accounts/"+acc.ID.String()), nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete unused account expected 204, got %d", rec.Code)
	}
	if rec := do(t, f.h, http.MethodGet, f.q("/v1/accounts/"+acc.ID.String()), nil); rec.Code != http.StatusNotFound {
		t.Fatalf("deleted account expected 404, got %d", rec.Code)
	}
}

func TestTransactions_Validation422(t *testing.T) {
	f := setup(t)
	past := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC).Format(time.RFC3339)
	cases := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"zero amount", map[string]any{"account_id": f.account.ID, "category_id": f.expense.ID, "amount": "0.00", "date": past}, "amount"},
		{"sub-cent amount", map[string]any{"account_id": f.account.ID, "category_id": f.expense.ID, "amount": "0.001", "date": past}, "amount"},
		{"future date", map[string]any{"account_id": f.account.ID, "category_id": f.expense.ID, "amount": "1.00", "date": time.Now().Add(48 * time.Hour).Format(time.RFC3339)}, "date"},
		{"unknown account", map[string]any{"account_id": uuid.New(), "category_id": f.expense.ID, "amount": "1.00", "date": past}, "account_id"},
		{"unknown tag", map[string]any{"account_id": f.account.ID, "category_id": f.expense.ID, "amount": "1.00", "date": past, "tag_ids": []uuid.UUID{uuid.New()}}, "tag_ids"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, f.h, http.MethodPost, f.q("/v1/transactions"), tc.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}
			if e := decode[errResp](t, rec); e.Field != tc.field {
				t.Fatalf("expected field %q, got %+v", tc.field, e)
			}
		})
	}
}

func TestTransactions_ListFilters(t *testing.T) {
	f := setup(t)
	f.postTx(t, f.income, "100.00", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	f.postTx(t, f.expense, "10.00", time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC))
	f.postTx(t, f.expense, "20.00", time.Date(2024, 1, 9, 9, 0, 0, 0, time.UTC))

	rec := do(t, f.h, http.MethodGet, f.q("/v1/transactions")+"&type=expense&from=2024-01-01&to=2024-01-03", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	got := decode[[]transactionResponse](t, rec)
	if len(got) != 1 || got[0].Amount != "10.00" {
		t.Fatalf("unexpected filter result: %+v", got)
	}

	for _, q := range []string{"&from=2024-02-01&to=2024-01-01", "&from=2024-01-02&to=2024-01-01"} {
		rec = do(t, f.h, http.MethodGet, f.q("/v1/transactions")+q, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: inverted range expected 400, got %d", q, rec.Code)
		}
		if e := decode[errResp](t, rec); e.Code != "invalid_range" {
			t.Fatalf("%s: expected invalid_range, got %q", q, e.Code)
		}
	}

	rec = do(t, f.h, http.MethodGet, f.q("/v1/transactions")+"&from=2024-01-03&to=2024-01-03", nil)
	if got := decode[[]transactionResponse](t, rec); rec.Code != http.StatusOK || len(got) != 1 {
		t.Fatalf("single-day range expected one row, got %d %+v", rec.Code, got)
	}
}

func TestAnalytics_DailySeriesZeroFillAndSign(t *testing.T) {
	f := setup(t)
	f.postTx(t, f.income, "100.00", time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC))
	f.postTx(t, f.expense, "40.00", time.Date(2024, 2, 1, 20, 0, 0, 0, time.UTC))
	f.postTx(t, f.expense, "15.50", time.Date(2024, 2, 3, 12, 0, 0, 0, time.UTC))

	rec := do(t, f.h, http.MethodGet, f.q("/v1/analytics/daily-series")+"&start=2024-02-01&end=2024-02-04", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	got := decode[[]dailyResp](t, rec)
	want := []dailyResp{
		{"2024-02-01", "60.00"},
		{"2024-02-02", "0.00"},
		{"2024-02-03", "-15.50"},
		{"2024-02-04", "0.00"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d days, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("day %d: want %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestAnalytics_InvalidParameters(t *testing.T) {
	f := setup(t)
	cases := []struct {
		path   string
		status int
		code   string
	}{
		{"/v1/analytics/daily-series?start=2024-02-05&end=2024-02-01", http.StatusBadRequest, "invalid_range"},
		{"/v1/analytics/daily-series?start=2024-02-05", http.StatusBadRequest, "invalid_argument"},
		{"/v1/analytics/daily-series?start=02/05/2024&end=2024-02-06", http.StatusBadRequest, "invalid_argument"},
		{"/v1/analytics/weekly-summary?start=2024-02-05&weeks=-1", http.StatusBadRequest, "invalid_argument"},
		{"/v1/analytics/weekly-summary?start=2024-02-05&weeks=two", http.StatusBadRequest, "invalid_argument"},
		{"/v1/analytics/weekly-summary?start=2024-02-05&weeks=1000000000", http.StatusBadRequest, "invalid_argument"},
		{"/v1/analytics/weekly-summary?start=2024-02-05&weeks=2305843009213693952", http.StatusBadRequest, "invalid_argument"},
		{"/v1/analytics/monthly-summary?year=2024&month=13", http.StatusBadRequest, "invalid_argument"},
		{"/v1/analytics/monthly-summary?year=0&month=1", http.StatusBadRequest, "invalid_argument"},
	}
	for _, tc := range cases {
		rec := do(t, f.h, http.MethodGet, tc.path+"&user_id="+f.userID.String(), nil)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d: %s", tc.path, tc.status, rec.Code, rec.Body.String())
		}
		if e := decode[errResp](t, rec); e.Code != tc.code {
			t.Fatalf("%s: expected code %q, got %+v", tc.path, tc.code, e)
		}
	}
}

func TestAnalytics_WeeklyAndMonthly(t *testing.T) {
	f := setup(t)
	f.postTx(t, f.income, "1000.00", time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))
	f.postTx(t, f.expense, "200.00", time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC))
	f.postTx(t, f.expense, "50.25", time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC))

	rec := do(t, f.h, http.MethodGet, f.q("/v1/analytics/weekly-summary")+"&start=2024-02-01&weeks=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("weekly expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	weeks := decode[[]weeklyResponse](t, rec)
	if len(weeks) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(weeks))
	}
	if weeks[0].WeekStart != "2024-02-01" || weeks[0].WeekEnd != "2024-02-07" || weeks[0].Balance != "1000.00" {
		t.Fatalf("unexpected first week: %+v", weeks[0])
	}
	if weeks[1].WeekStart != "2024-02-08" || weeks[1].Balance != "-200.00" {
		t.Fatalf("unexpected second week: %+v", weeks[1])
	}

	rec = do(t, f.h, http.MethodGet, f.q("/v1/analytics/weekly-summary")+"&start=2024-02-01&weeks=0", nil)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("zero weeks expected empty list, got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, f.h, http.MethodGet, f.q("/v1/analytics/monthly-summary")+"&year=2024&month=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("monthly expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	m := decode[monthlyResponse](t, rec)
	if m.Balance != "749.75" || m.Incomes != "1000.00" || m.Expenses != "250.25" {
		t.Fatalf("unexpected monthly totals: %+v", m)
	}
	if len(m.DailySeries) != 29 {
		t.Fatalf("leap February expected 29 days, got %d", len(m.DailySeries))
	}
}

func TestAnalytics_CacheInvalidatedOnWrite(t *testing.T) {
	f := setupWith(t, Options{Cache: cache.NewLRU(16), CacheTTL: time.Minute})
	path := f.q("/v1/analytics/daily-series") + "&start=2024-03-01&end=2024-03-01"

	first := decode[[]dailyResp](t, do(t, f.h, http.MethodGet, path, nil))
	if first[0].Balance != "0.00" {
		t.Fatalf("expected empty day, got %+v", first)
	}
	tx := f.postTx(t, f.expense, "9.99", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	second := decode[[]dailyResp](t, do(t, f.h, http.MethodGet, path, nil))
	if second[0].Balance != "-9.99" {
		t.Fatalf("cache served stale balance after create: %+v", second)
	}

	rec := do(t, f.h, http.MethodPatch, f.q("/v1/transactions/"+tx.ID.String()), map[string]any{"amount": "1.01"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	third := decode[[]dailyResp](t, do(t, f.h, http.MethodGet, path, nil))
	if third[0].Balance != "-1.01" {
		t.Fatalf("cache served stale balance after update: %+v", third)
	}

	if rec := do(t, f.h, http.MethodDelete, f.q("/v1/transactions/"+tx.ID.String()), nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete expected 204, got %d", rec.Code)
	}
	fourth := decode[[]dailyResp](t, do(t, f.h, http.MethodGet, path, nil))
	if fourth[0].Balance != "0.00" {
		t.Fatalf("cache served stale balance after delete: %+v", fourth)
	}
}

func TestBudgets_UsageAndTagClear(t *testing.T) {
	f := setup(t)
	rec := do(t, f.h, http.MethodPost, "/v1/currencies", map[string]any{"code": "eur", "name": "Euro", "symbol": "€"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("currency expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	cur := decode[currencyResponse](t, rec)
	if cur.Code != "EUR" {
		t.Fatalf("code not upper-cased: %q", cur.Code)
	}
	rec = do(t, f.h, http.MethodPost, f.q("/v1/tags"), map[string]any{"name": "holiday"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("tag expected 201, got %d", rec.Code)
	}
	tag := decode[tagResponse](t, rec)

	rec = do(t, f.h, http.MethodPost, f.q("/v1/transactions"), map[string]any{
		"account_id": f.account.ID, "category_id": f.expense.ID, "amount": "30.00",
		"date": "2024-04-10T10:00:00Z", "tag_ids": []uuid.UUID{tag.ID},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("tagged tx expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	f.postTx(t, f.expense, "12.00", time.Date(2024, 4, 11, 10, 0, 0, 0, time.UTC))
	f.postTx(t, f.income, "500.00", time.Date(2024, 4, 12, 10, 0, 0, 0, time.UTC))

	rec = do(t, f.h, http.MethodPost, f.q("/v1/budgets"), map[string]any{"currency_id": cur.ID, "tag_id": tag.ID, "month": "2024-04-01", "amount": "100"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("budget expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	b := decode[budgetResponse](t, rec)
	if b.Amount != "100.00" {
		t.Fatalf("budget amount not normalised: %q", b.Amount)
	}

	rec = do(t, f.h, http.MethodGet, f.q("/v1/budgets/"+b.ID.String()+"/usage"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("usage expected 200, got %d", rec.Code)
	}
	if u := decode[usageResponse](t, rec); u.Spent != "30.00" || u.Remaining != "70.00" {
		t.Fatalf("unexpected tagged usage: %+v", u)
	}

	rec = do(t, f.h, http.MethodPatch, f.q("/v1/budgets/"+b.ID.String()), map[string]any{"tag_id": nil})
	if rec.Code != http.StatusOK {
		t.Fatalf("clear tag expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[budgetResponse](t, rec); got.TagID != nil {
		t.Fatalf("tag not cleared: %+v", got)
	}
	rec = do(t, f.h, http.MethodGet, f.q("/v1/budgets/"+b.ID.String()+"/usage"), nil)
	if u := decode[usageResponse](t, rec); u.Spent != "42.00" || u.Remaining != "58.00" {
		t.Fatalf("unexpected untagged usage: %+v", u)
	}

	rec = do(t, f.h, http.MethodPost, f.q("/v1/budgets"), map[string]any{"currency_id": cur.ID, "month": "2024-04-15", "amount": "1"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("mid-month budget expected 422, got %d", rec.Code)
	}
}

func TestExchangeRates_Convert(t *testing.T) {
	f := setup(t)
	usd := decode[currencyResponse](t, do(t, f.h, http.MethodPost, "/v1/currencies", map[string]any{"code": "USD", "name": "US Dollar", "symbol": "$"}))
	eur := decode[currencyResponse](t, do(t, f.h, http.MethodPost, "/v1/currencies", map[string]any{"code": "EUR", "name": "Euro", "symbol": "€"}))

	for _, r := range []map[string]any{
		{"base_currency_id": usd.ID, "target_currency_id": eur.ID, "rate": "0.90", "date": "2024-01-01"},
		{"base_currency_id": usd.ID, "target_currency_id": eur.ID, "rate": "0.92", "date": "2024-02-01"},
	} {
		if rec := do(t, f.h, http.MethodPost, "/v1/exchange-rates", r); rec.Code != http.StatusCreated {
			t.Fatalf("rate expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}
	rec := do(t, f.h, http.MethodPost, "/v1/exchange-rates", map[string]any{"base_currency_id": usd.ID, "target_currency_id": usd.ID, "rate": "1", "date": "2024-01-01"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("same-currency rate expected 422, got %d", rec.Code)
	}

	rec = do(t, f.h, http.MethodGet, "/v1/exchange-rates/convert?base="+usd.ID.String()+"&target="+eur.ID.String()+"&amount=10&date=2024-01-15", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("convert expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	c := decode[conversionResponse](t, rec)
	if c.Converted != "9.00" || c.RateDate != "2024-01-01" {
		t.Fatalf("unexpected conversion: %+v", c)
	}

	rec = do(t, f.h, http.MethodGet, "/v1/exchange-rates/convert?base="+eur.ID.String()+"&target="+usd.ID.String()+"&amount=10", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing rate expected 404, got %d", rec.Code)
	}

	rec = do(t, f.h, http.MethodDelete, "/v1/currencies/"+usd.ID.String(), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete currency with rates expected 409, got %d", rec.Code)
	}
}

func TestAuth_BearerTokenScopesUser(t *testing.T) {
	f := setupWith(t, Options{Auth: AuthConfig{Secret: "s3cret", Issuer: "finledger"}})

	if rec := do(t, f.h, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz must stay public, got %d", rec.Code)
	}
	if rec := do(t, f.h, http.MethodGet, f.q("/v1/accounts"), nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token expected 401, got %d", rec.Code)
	}

	creds := map[string]any{"email": "auth@example.com", "password": "long password"}
	if rec := do(t, f.h, http.MethodPost, "/v1/users", creds); rec.Code != http.StatusCreated {
		t.Fatalf("register must stay public, got %d", rec.Code)
	}
	rec := do(t, f.h, http.MethodPost, "/v1/sessions", creds)
	if rec.Code != http.StatusCreated {
		t.Fatalf("session expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	sess := decode[sessionResponse](t, rec)
	if sess.Token == "" || sess.ExpiresAt == nil {
		t.Fatalf("expected a token: %+v", sess)
	}
	bearer := "Bearer " + sess.Token

	rec = do(t, f.h, http.MethodGet, "/v1/accounts", nil, "Authorization", bearer)
	if rec.Code != http.StatusOK {
		t.Fatalf("token subject should act as user_id, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, f.h, http.MethodGet, f.q("/v1/accounts"), nil, "Authorization", bearer)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("conflicting user_id expected 403, got %d", rec.Code)
	}
	rec = do(t, f.h, http.MethodGet, "/v1/users/"+f.userID.String(), nil, "Authorization", bearer)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("other user's record expected 403, got %d", rec.Code)
	}

	forged, err := signHS256(JWTClaims{Subject: f.userID.String(), Issuer: "finledger"}, "other-secret")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if rec := do(t, f.h, http.MethodGet, "/v1/accounts", nil, "Authorization", "Bearer "+forged); rec.Code != http.StatusUnauthorized {
		t.Fatalf("forged token expected 401, got %d", rec.Code)
	}
	expired, _ := signHS256(JWTClaims{Subject: sess.UserID.String(), Issuer: "finledger", ExpiresAt: time.Now().Add(-time.Minute).Unix()}, "s3cret")
	if rec := do(t, f.h, http.MethodGet, "/v1/accounts", nil, "Authorization", "Bearer "+expired); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token expected 401, got %d", rec.Code)
	}
}

func TestDeleteUser_Cascades(t *testing.T) {
	f := setup(t)
	f.postTx(t, f.expense, "3.00", time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC))
	if rec := do(t, f.h, http.MethodDelete, "/v1/users/"+f.userID.String(), nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete user expected 204, got %d", rec.Code)
	}
	if rec := do(t, f.h, http.MethodGet, "/v1/users/"+f.userID.String(), nil); rec.Code != http.StatusNotFound {
		t.Fatalf("deleted user expected 404, got %d", rec.Code)
	}
	txs, err := f.store.ListTransactions(context.Background(), f.userID, ledger.TransactionFilter{})
	if err != nil || len(txs) != 0 {
		t.Fatalf("transactions survived user delete: %v %d", err, len(txs))
	}
}

func TestConcurrency_Smoke(t *testing.T) {
	f := setupWith(t, Options{Cache: cache.NewLRU(64), CacheTTL: time.Minute})
	day := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	path := f.q("/v1/analytics/daily-series") + "&start=2024-05-01&end=2024-05-31"

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			rec := do(t, f.h, http.MethodPost, f.q("/v1/transactions"), map[string]any{
				"account_id": f.account.ID, "category_id": f.expense.ID, "amount": "1.00", "date": day.Format(time.RFC3339),
			})
			if rec.Code != http.StatusCreated {
				t.Errorf("create expected 201, got %d", rec.Code)
			}
		}()
		go func() {
			defer wg.Done()
			if rec := do(t, f.h, http.MethodGet, path, nil); rec.Code != http.StatusOK {
				t.Errorf("series expected 200, got %d", rec.Code)
			}
		}()
	}
	wg.Wait()

	got := decode[[]dailyResp](t, do(t, f.h, http.MethodGet, path, nil))
	if len(got) != 31 || got[0].Balance != "-20.00" {
		t.Fatalf("unexpected final series: len=%d first=%+v", len(got), got[0])
	}
}

func TestTransactions_IdempotencyKey(t *testing.T) {
	f := setup(t)
	body := map[string]any{"account_id": f.account.ID, "category_id": f.expense.ID, "amount": "7.50", "date": "2024-06-01T10:00:00Z"}

	first := do(t, f.h, http.MethodPost, f.q("/v1/transactions"), body, "Idempotency-Key", "abc")
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", first.Code, first.Body.String())
	}
	again := do(t, f.h, http.MethodPost, f.q("/v1/transactions"), body, "Idempotency-Key", "abc")
	if again.Code != http.StatusCreated || again.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replayed 201, got %d", again.Code)
	}
	if decode[transactionResponse](t, first).ID != decode[transactionResponse](t, again).ID {
		t.Fatalf("replay returned a different transaction")
	}

	body["amount"] = "8.00"
	rec := do(t, f.h, http.MethodPost, f.q("/v1/transactions"), body, "Idempotency-Key", "abc")
	if rec.Code != http.StatusConflict {
		t.Fatalf("reused key with new body expected 409, got %d", rec.Code)
	}
	if e := decode[errResp](t, rec); e.Code != "idempotency_mismatch" {
		t.Fatalf("unexpected code %q", e.Code)
	}

	txs, err := f.store.ListTransactions(context.Background(), f.userID, ledger.TransactionFilter{})
	if err != nil || len(txs) != 1 {
		t.Fatalf("expected exactly one stored transaction, got %d (%v)", len(txs), err)
	}
}
