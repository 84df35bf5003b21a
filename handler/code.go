package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/avinab11/velagio-qr-studio/model"
	"github.com/avinab11/velagio-qr-studio/qrpayload"
	"github.com/avinab11/velagio-qr-studio/store"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// CodeResponse is the creation response. It is the only place the edit token
// leaves the server for a given code; the client must persist it locally.
type CodeResponse struct {
	Code       model.DynamicCode `json:"code"`
	ResolveURL string            `json:"resolveURL"`
	QRCodeURL  string            `json:"qrCodeURL"`
}

// CreateCode handles POST /api/codes
// @Summary Create a dynamic code
// @Description Allocates a short public id and an edit token for a mutable redirect. The QR payload should encode the returned resolveURL, not the target.
// @Tags Codes
// @Accept json
// @Produce json
// @Param request body object true "targetURL to redirect to"
// @Success 201 {object} CodeResponse
// @Failure 400 {object} ErrorResponse "Empty or invalid target URL"
// @Failure 500 {object} ErrorResponse
// @Router /api/codes [post]
func (h *Handler) CreateCode(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TargetURL string `json:"targetURL"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := qrpayload.ValidateTargetURL(input.TargetURL); err != nil {
		log.Warn().Err(err).Str("target", input.TargetURL).Msg("Invalid target URL")
		SendJSONError(w, http.StatusBadRequest, err, "")
		return
	}

	ctx, cancel := h.opCtx(r.Context())
	defer cancel()

	code, err := h.store.CreateCode(ctx, input.TargetURL)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create dynamic code")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to create dynamic code")
		return
	}

	log.Info().
		Str("code_id", code.ID).
		Str("target", code.TargetURL).
		Msg("Dynamic code created")

	SendJSONSuccess(w, http.StatusCreated, CodeResponse{
		Code:       code,
		ResolveURL: qrpayload.ResolverURL(h.baseURL, code.ID),
		QRCodeURL:  fmt.Sprintf("%s/qr?id=%s", h.baseURL, url.QueryEscape(code.ID)),
	})
}

// GetCode handles GET /api/codes/{id}. The id alone authorizes reads; the
// edit token is never included.
func (h *Handler) GetCode(w http.ResponseWriter, r *http.Request) {
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

	SendJSONSuccess(w, http.StatusOK, code.Public())
}

// LookupRequest identifies the dashboard's owned codes: ids from rich
// ownership entries plus bare tokens from legacy entries.
type LookupRequest struct {
	IDs        []string `json:"ids"`
	EditTokens []string `json:"editTokens"`
}

// LookupCodes handles POST /api/codes/lookup - the manage dashboard fetch
// @Summary Fetch records for owned codes
// @Tags Codes
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/codes/lookup [post]
func (h *Handler) LookupCodes(w http.ResponseWriter, r *http.Request) {
	var input LookupRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	ctx, cancel := h.opCtx(r.Context())
	defer cancel()

	byID, err := h.store.GetCodes(ctx, input.IDs)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch codes by id")
		SendJSONError(w, http.StatusInternalServerError, errors.New("internal server error"), "")
		return
	}

	byToken, err := h.store.GetByTokens(ctx, input.EditTokens)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch codes by token")
		SendJSONError(w, http.StatusInternalServerError, errors.New("internal server error"), "")
		return
	}

	seen := make(map[string]bool, len(byID))
	codes := make([]model.DynamicCode, 0, len(byID)+len(byToken))
	for _, code := range byID {
		seen[code.ID] = true
		codes = append(codes, code.Public())
	}
	// Token-matched records keep the edit token so legacy entries can be
	// upgraded to the id-keyed ownership format.
	for _, code := range byToken {
		if seen[code.ID] {
			continue
		}
		codes = append(codes, code)
	}

	SendJSONSuccess(w, http.StatusOK, map[string]interface{}{
		"codes": codes,
		"total": len(codes),
	})
}
