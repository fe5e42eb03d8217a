package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/cache"
	"github.com/tinoosan/finledger/internal/ledger"
	"github.com/tinoosan/finledger/internal/service/analytics"
)

// invalidate drops the user's cached analytics after a write that can change them.
func (s *Server) invalidate(userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if n := s.cache.Invalidate(cache.UserPrefix(userID)); n > 0 {
		s.log.Debug("analytics cache invalidated", "user_id", userID.String(), "entries", n)
	}
}

// dailySeries handles GET /v1/analytics/daily-series?user_id=&start=&end=.
func (s *Server) dailySeries(w http.ResponseWriter, r *http.Request) {
	defer observeAnalytics("daily", time.Now())
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	start, ok := queryDate(w, r, "start", true)
	if !ok {
		return
	}
	end, ok := queryDate(w, r, "end", true)
	if !ok {
		return
	}
	key := cache.Key(userID, "daily", start.Format(ledger.DateLayout), end.Format(ledger.DateLayout))
	days, err := cache.Fetch(r.Context(), s.cache, key, s.cacheTTL, func(ctx context.Context) ([]analytics.DailyBalance, error) {
		return s.analytics.DailySeries(ctx, userID, *start, *end)
	})
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toDailyResponse(days))
}

// weeklySummary handles GET /v1/analytics/weekly-summary?user_id=&start=&weeks=.
func (s *Server) weeklySummary(w http.ResponseWriter, r *http.Request) {
	defer observeAnalytics("weekly", time.Now())
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	start, ok := queryDate(w, r, "start", true)
	if !ok {
		return
	}
	weeks, ok := queryInt(w, r, "weeks")
	if !ok {
		return
	}
	key := cache.Key(userID, "weekly", start.Format(ledger.DateLayout), weeks)
	series, err := cache.Fetch(r.Context(), s.cache, key, s.cacheTTL, func(ctx context.Context) ([]analytics.WeeklyBalance, error) {
		return s.analytics.WeeklySeries(ctx, userID, *start, weeks)
	})
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toWeeklyResponse(series))
}

// monthlySummary handles GET /v1/analytics/monthly-summary?user_id=&year=&month=.
func (s *Server) monthlySummary(w http.ResponseWriter, r *http.Request) {
	defer observeAnalytics("monthly", time.Now())
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	year, ok := queryInt(w, r, "year")
	if !ok {
		return
	}
	month, ok := queryInt(w, r, "month")
	if !ok {
		return
	}
	key := cache.Key(userID, "monthly", year, month)
	sum, err := cache.Fetch(r.Context(), s.cache, key, s.cacheTTL, func(ctx context.Context) (analytics.MonthlySummary, error) {
		return s.analytics.MonthlySeries(ctx, userID, year, month)
	})
	if err != nil {
		s.writeServiceErr(w, r, err)
		return
	}
	toJSON(w, http.StatusOK, toMonthlyResponse(sum))
}
