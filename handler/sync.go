package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/avinab11/velagio-qr-studio/ownership"
	"github.com/avinab11/velagio-qr-studio/qrpayload"

	"github.com/rs/zerolog/log"
)

// The sync endpoints serve the cross-device ownership protocol. Entries live
// only in the browser; the server just encodes and merges them.

// ExportSyncRequest carries the client's current ownership entries, either
// in the rich object format or the legacy flat token array.
type ExportSyncRequest struct {
	Entries json.RawMessage `json:"entries"`
}

// ExportSyncResponse is everything the client needs to mint a sync QR
type ExportSyncResponse struct {
	Sync      string `json:"sync"`
	ManageURL string `json:"manageURL"`
	QRCodeURL string `json:"qrCodeURL"`
	Count     int    `json:"count"`
}

// ExportSync handles POST /api/sync/export
// @Summary Encode ownership entries for a sync QR
// @Description Serializes the entry list into the base64 ?sync= parameter and returns the manage-page URL a sync QR should encode.
// @Tags Sync
// @Accept json
// @Produce json
// @Success 200 {object} ExportSyncResponse
// @Failure 400 {object} ErrorResponse "Invalid entries"
// @Router /api/sync/export [post]
func (h *Handler) ExportSync(w http.ResponseWriter, r *http.Request) {
	var input ExportSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	entries, err := ownership.ParseEntries(input.Entries)
	if err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Entries must be an ownership entry list or a token array")
		return
	}
	if len(entries) == 0 {
		SendJSONError(w, http.StatusBadRequest, errors.New("nothing to export"), "")
		return
	}

	sync, err := ownership.EncodeSync(entries)
	if err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "")
		return
	}

	manageURL := qrpayload.ManageSyncURL(h.baseURL, sync)

	log.Info().Int("entries", len(entries)).Msg("Ownership export encoded")

	SendJSONSuccess(w, http.StatusOK, ExportSyncResponse{
		Sync:      sync,
		ManageURL: manageURL,
		QRCodeURL: fmt.Sprintf("%s/qr?content=%s", h.baseURL, url.QueryEscape(manageURL)),
		Count:     len(entries),
	})
}

// ImportSyncRequest merges incoming entries into the client's current set.
// Sync carries the ?sync= query parameter; File carries raw exported JSON.
// Exactly one of the two transports is expected.
type ImportSyncRequest struct {
	Sync    string          `json:"sync,omitempty"`
	File    json.RawMessage `json:"file,omitempty"`
	Entries json.RawMessage `json:"entries"` // the client's current store
}

// ImportSync handles POST /api/sync/import
// @Summary Merge synced ownership entries
// @Description Decodes a ?sync= parameter or an exported file and merges it additively into the client's current entries. Existing ids are never overwritten; importing the same export twice is a no-op.
// @Tags Sync
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse "Invalid payload"
// @Router /api/sync/import [post]
func (h *Handler) ImportSync(w http.ResponseWriter, r *http.Request) {
	var input ImportSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	var (
		incoming []ownership.Entry
		err      error
	)
	switch {
	case input.Sync != "":
		incoming, err = ownership.DecodeSync(input.Sync)
	case len(input.File) > 0:
		incoming, err = ownership.ParseEntries(input.File)
	default:
		SendJSONError(w, http.StatusBadRequest, errors.New("missing sync payload"), "Provide either sync or file")
		return
	}
	if err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "")
		return
	}

	current := []ownership.Entry{}
	if len(input.Entries) > 0 {
		current, err = ownership.ParseEntries(input.Entries)
		if err != nil {
			SendJSONError(w, http.StatusBadRequest, err, "Current entries are malformed")
			return
		}
	}

	merged := ownership.Merge(current, incoming)

	log.Info().
		Int("current", len(current)).
		Int("incoming", len(incoming)).
		Int("merged", len(merged)).
		Msg("Ownership entries merged")

	SendJSONSuccess(w, http.StatusOK, map[string]interface{}{
		"entries": merged,
		"added":   len(merged) - len(current),
	})
}
