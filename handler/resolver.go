package handler

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/avinab11/velagio-qr-studio/model"
	"github.com/avinab11/velagio-qr-studio/store"
	"github.com/avinab11/velagio-qr-studio/useragent"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Resolve handles GET /resolve?id= - the endpoint every printed QR hits
// @Summary Resolve a dynamic code
// @Description Looks up the code, logs a scan, and redirects to the current target URL. Blocked codes redirect to the blocked page; blacklisted targets redirect to a warning page.
// @Tags Resolver
// @Param id query string true "Dynamic code id"
// @Success 301 "Redirect to target URL"
// @Success 302 "Redirect to blocked or warning page"
// @Failure 400 {object} ErrorResponse "Missing id"
// @Failure 404 {object} ErrorResponse "Code not found"
// @Failure 500 {object} ErrorResponse "Store unreachable"
// @Router /resolve [get]
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		SendJSONError(w, http.StatusBadRequest, errors.New("missing id"), "The id query parameter is required")
		return
	}

	ctx, cancel := h.opCtx(r.Context())
	defer cancel()

	code, cached := h.cache.GetCode(id)
	if !cached {
		var err error
		code, err = h.store.GetCode(ctx, id)
		if err == store.ErrNotFound {
			log.Warn().Str("code_id", id).Msg("Unknown code id")
			SendJSONError(w, http.StatusNotFound, errors.New("QR code not found"), "")
			return
		}
		if err != nil {
			// A store failure is not a missing record; surface it as such.
			log.Error().Err(err).Str("code_id", id).Msg("Failed to fetch code record")
			SendJSONError(w, http.StatusInternalServerError, errors.New("internal server error"), "")
			return
		}
		h.cache.SetCode(code)
	}

	// Intermediaries must never cache a stale destination.
	w.Header().Set("Cache-Control", "no-store")

	// The owner kill switch wins over everything, including analytics:
	// blocked scans are not metered.
	if code.IsBlocked {
		http.Redirect(w, r, h.config.Resolver.BlockedPath, http.StatusFound)
		return
	}

	if h.blacklist.Match(code.TargetURL) {
		http.Redirect(w, r, h.config.Resolver.WarningPath, http.StatusFound)
		return
	}

	scan := model.Scan{
		ID:         uuid.New().String(),
		CodeID:     id,
		DeviceType: useragent.DeviceType(r.Header.Get("User-Agent")),
		Browser:    useragent.Browser(r.Header.Get("User-Agent")),
		Country:    useragent.Country(r.Header),
		Timestamp:  time.Now().UTC(),
	}

	// Both analytics writes run concurrently and neither may delay or fail
	// the redirect. Failures are logged and dropped.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := h.store.AppendScan(ctx, scan); err != nil {
			log.Error().Err(err).Str("code_id", id).Msg("Failed to append scan row")
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := h.store.IncrementScanCount(ctx, id); err != nil {
			log.Error().Err(err).Str("code_id", id).Msg("Failed to increment scan count")
		}
	}()
	wg.Wait()

	status := h.config.Resolver.RedirectStatus
	if status != http.StatusFound {
		status = http.StatusMovedPermanently
	}

	log.Info().
		Str("code_id", id).
		Str("target", code.TargetURL).
		Str("device", scan.DeviceType).
		Str("country", scan.Country).
		Msg("Resolved dynamic code")

	http.Redirect(w, r, code.TargetURL, status)
}
