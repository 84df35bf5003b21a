package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avinab11/velagio-qr-studio/qrpayload"
	"github.com/avinab11/velagio-qr-studio/store"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// Management operations are authorized only by possession of the
// (id, edit token) pair. A token mismatch is reported distinctly from
// not-found and from store failures so the dashboard can tell the user
// their token is stale instead of retrying forever.

// UpdateTargetRequest is the body for PUT /api/codes/{id}
type UpdateTargetRequest struct {
	EditToken string `json:"editToken"`
	TargetURL string `json:"targetURL"`
}

// SetBlockedRequest is the body for POST /api/codes/{id}/block. The desired
// state is explicit so two racing tabs cannot flip the flag past each other.
type SetBlockedRequest struct {
	EditToken string `json:"editToken"`
	Blocked   bool   `json:"blocked"`
}

// DeleteCodeRequest is the body for DELETE /api/codes/{id}
type DeleteCodeRequest struct {
	EditToken string `json:"editToken"`
}

func (h *Handler) sendManagementError(w http.ResponseWriter, err error, id string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		SendJSONError(w, http.StatusNotFound, errors.New("QR code not found"), "")
	case errors.Is(err, store.ErrTokenMismatch):
		log.Warn().Str("code_id", id).Msg("Edit token mismatch")
		SendJSONError(w, http.StatusForbidden, store.ErrTokenMismatch, "The edit token does not match this code")
	default:
		log.Error().Err(err).Str("code_id", id).Msg("Management operation failed")
		SendJSONError(w, http.StatusInternalServerError, errors.New("internal server error"), "")
	}
}

// UpdateTarget handles PUT /api/codes/{id} - changes the redirect destination
// @Summary Update the target URL of a dynamic code
// @Tags Management
// @Accept json
// @Produce json
// @Param id path string true "Code id"
// @Success 200 {object} model.DynamicCode
// @Failure 400 {object} ErrorResponse "Invalid body or target URL"
// @Failure 403 {object} ErrorResponse "Edit token mismatch"
// @Failure 404 {object} ErrorResponse "Code not found"
// @Router /api/codes/{id} [put]
func (h *Handler) UpdateTarget(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var input UpdateTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if input.EditToken == "" {
		SendJSONError(w, http.StatusBadRequest, errors.New("missing editToken"), "The edit token is required")
		return
	}
	if err := qrpayload.ValidateTargetURL(input.TargetURL); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "")
		return
	}

	ctx, cancel := h.opCtx(r.Context())
	defer cancel()

	code, err := h.store.UpdateTarget(ctx, id, input.EditToken, input.TargetURL)
	if err != nil {
		h.sendManagementError(w, err, id)
		return
	}

	h.cache.Delete(id)

	log.Info().
		Str("code_id", id).
		Str("new_target", input.TargetURL).
		Msg("Target URL updated")

	SendJSONSuccess(w, http.StatusOK, code.Public())
}

// SetBlocked handles POST /api/codes/{id}/block - the owner kill switch
// @Summary Block or unblock a dynamic code
// @Tags Management
// @Accept json
// @Produce json
// @Param id path string true "Code id"
// @Success 200 {object} model.DynamicCode
// @Failure 403 {object} ErrorResponse "Edit token mismatch"
// @Failure 404 {object} ErrorResponse "Code not found"
// @Router /api/codes/{id}/block [post]
func (h *Handler) SetBlocked(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var input SetBlockedRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if input.EditToken == "" {
		SendJSONError(w, http.StatusBadRequest, errors.New("missing editToken"), "The edit token is required")
		return
	}

	ctx, cancel := h.opCtx(r.Context())
	defer cancel()

	code, err := h.store.SetBlocked(ctx, id, input.EditToken, input.Blocked)
	if err != nil {
		h.sendManagementError(w, err, id)
		return
	}

	h.cache.Delete(id)

	log.Info().
		Str("code_id", id).
		Bool("blocked", input.Blocked).
		Msg("Block state updated")

	SendJSONSuccess(w, http.StatusOK, code.Public())
}

// DeleteCode handles DELETE /api/codes/{id} - a true server-side delete.
// Removing a code from the dashboard without presenting it here leaves the
// record (and its scan history) on the server.
func (h *Handler) DeleteCode(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var input DeleteCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if input.EditToken == "" {
		SendJSONError(w, http.StatusBadRequest, errors.New("missing editToken"), "The edit token is required")
		return
	}

	ctx, cancel := h.opCtx(r.Context())
	defer cancel()

	if err := h.store.DeleteCode(ctx, id, input.EditToken); err != nil {
		h.sendManagementError(w, err, id)
		return
	}

	h.cache.Delete(id)

	log.Info().Str("code_id", id).Msg("Dynamic code deleted")

	w.WriteHeader(http.StatusNoContent)
}
