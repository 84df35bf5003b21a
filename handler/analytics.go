package handler

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/avinab11/velagio-qr-studio/model"
	"github.com/avinab11/velagio-qr-studio/store"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// GetAnalytics handles GET /api/codes/{id}/analytics
// @Summary Get scan analytics for a dynamic code
// @Description Aggregates the most recent scan rows into a 30-day trend line, a 7-day rolling total, and device/browser/country breakdowns.
// @Tags Analytics
// @Produce json
// @Param id path string true "Code id"
// @Success 200 {object} model.CodeAnalytics
// @Failure 404 {object} ErrorResponse "Code not found"
// @Router /api/codes/{id}/analytics [get]
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	ctx, cancel := h.opCtx(r.Context())
	defer cancel()

	code, err := h.store.GetCode(ctx, id)
	if err == store.ErrNotFound {
		SendJSONError(w, http.StatusNotFound, errors.New("QR code not found"), "")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("code_id", id).Msg("Failed to fetch code record")
		SendJSONError(w, http.StatusInternalServerError, errors.New("internal server error"), "")
		return
	}

	scans, err := h.store.RecentScans(ctx, id, 0)
	if err != nil {
		log.Error().Err(err).Str("code_id", id).Msg("Failed to fetch scan log")
		SendJSONError(w, http.StatusInternalServerError, errors.New("internal server error"), "")
		return
	}

	SendJSONSuccess(w, http.StatusOK, aggregateScans(code, scans, time.Now()))
}

// aggregateScans reduces the sampled scan window into dashboard figures.
// The trend line covers the lifetime counter's last 30 calendar days;
// breakdowns cover only the sampled window.
func aggregateScans(code model.DynamicCode, scans []model.Scan, now time.Time) model.CodeAnalytics {
	analytics := model.CodeAnalytics{
		CodeID:           code.ID,
		TargetURL:        code.TargetURL,
		TotalScans:       code.ScanCount,
		ScansByDay:       make([]model.TimeSeriesPoint, 0, 30),
		DeviceBreakdown:  make(map[string]int),
		BrowserBreakdown: make(map[string]int),
		TopCountries:     make([]model.CountryCount, 0, 5),
		SampleSize:       len(scans),
	}

	scansByDate := make(map[string]int64)
	countries := make(map[string]int)
	weekAgo := now.AddDate(0, 0, -7)

	for _, scan := range scans {
		scansByDate[scan.Timestamp.Format("2006-01-02")]++
		analytics.DeviceBreakdown[scan.DeviceType]++
		analytics.BrowserBreakdown[scan.Browser]++
		countries[scan.Country]++
		if scan.Timestamp.After(weekAgo) {
			analytics.Last7Days++
		}
	}

	// Zero-filled trend for the last 30 calendar days
	for i := 29; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		analytics.ScansByDay = append(analytics.ScansByDay, model.TimeSeriesPoint{
			Date:  date,
			Value: scansByDate[date],
		})
	}

	for country, count := range countries {
		analytics.TopCountries = append(analytics.TopCountries, model.CountryCount{
			Country: country,
			Count:   count,
		})
	}
	sort.Slice(analytics.TopCountries, func(i, j int) bool {
		if analytics.TopCountries[i].Count != analytics.TopCountries[j].Count {
			return analytics.TopCountries[i].Count > analytics.TopCountries[j].Count
		}
		return analytics.TopCountries[i].Country < analytics.TopCountries[j].Country
	})
	if len(analytics.TopCountries) > 5 {
		analytics.TopCountries = analytics.TopCountries[:5]
	}

	return analytics
}

// GetScans handles GET /api/codes/{id}/scans - the raw recent rows
func (h *Handler) GetScans(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			SendJSONError(w, http.StatusBadRequest, errors.New("invalid limit parameter"), "Limit must be a positive number")
			return
		}
		limit = parsed
	}

	ctx, cancel := h.opCtx(r.Context())
	defer cancel()

	if _, err := h.store.GetCode(ctx, id); err != nil {
		if err == store.ErrNotFound {
			SendJSONError(w, http.StatusNotFound, errors.New("QR code not found"), "")
			return
		}
		log.Error().Err(err).Str("code_id", id).Msg("Failed to fetch code record")
		SendJSONError(w, http.StatusInternalServerError, errors.New("internal server error"), "")
		return
	}

	scans, err := h.store.RecentScans(ctx, id, limit)
	if err != nil {
		log.Error().Err(err).Str("code_id", id).Msg("Failed to fetch scan log")
		SendJSONError(w, http.StatusInternalServerError, errors.New("internal server error"), "")
		return
	}

	SendJSONSuccess(w, http.StatusOK, map[string]interface{}{
		"codeId": id,
		"total":  len(scans),
		"scans":  scans,
	})
}
