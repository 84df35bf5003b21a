package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/avinab11/velagio-qr-studio/qrpayload"
	"github.com/avinab11/velagio-qr-studio/store"

	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

// GenerateQR handles GET /qr - renders a QR PNG for any generator payload
// @Summary Render a QR code image
// @Description Renders a PNG for a dynamic code (id=), raw content (content=), or a typed payload (type=url|wifi|phone|social with its fields). Dynamic codes encode the resolver URL.
// @Tags QR
// @Produce png
// @Param id query string false "Dynamic code id"
// @Param content query string false "Raw content to encode"
// @Param type query string false "Payload type: url, wifi, phone, social"
// @Param size query int false "Image size in pixels (128-1024)" default(256)
// @Param level query string false "Error correction: low, medium, high, highest" default(medium)
// @Success 200 "PNG image"
// @Failure 400 {object} ErrorResponse "Invalid parameters or empty content"
// @Failure 404 {object} ErrorResponse "Dynamic code not found"
// @Router /qr [get]
func (h *Handler) GenerateQR(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// Get size parameter (default: 256, min: 128, max: 1024)
	size := 256
	if sizeStr := query.Get("size"); sizeStr != "" {
		parsedSize, err := strconv.Atoi(sizeStr)
		if err != nil {
			SendJSONError(w, http.StatusBadRequest, errors.New("invalid size parameter"), "Size must be a number")
			return
		}
		if parsedSize < 128 || parsedSize > 1024 {
			SendJSONError(w, http.StatusBadRequest, errors.New("size out of range"), "Size must be between 128 and 1024")
			return
		}
		size = parsedSize
	}

	// Get error correction level (default: medium)
	level := qrcode.Medium
	if levelStr := query.Get("level"); levelStr != "" {
		switch levelStr {
		case "low":
			level = qrcode.Low
		case "medium":
			level = qrcode.Medium
		case "high":
			level = qrcode.High
		case "highest":
			level = qrcode.Highest
		default:
			SendJSONError(w, http.StatusBadRequest, errors.New("invalid level parameter"), "Level must be: low, medium, high, or highest")
			return
		}
	}

	payload, err := h.buildPayload(r)
	if err != nil {
		if err == store.ErrNotFound {
			SendJSONError(w, http.StatusNotFound, errors.New("QR code not found"), "")
			return
		}
		SendJSONError(w, http.StatusBadRequest, err, "")
		return
	}

	png, err := qrcode.Encode(payload, level, size)
	if err != nil {
		log.Error().Err(err).Str("payload", payload).Msg("Failed to generate QR code")
		SendJSONError(w, http.StatusInternalServerError, err, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))

	if _, err := w.Write(png); err != nil {
		log.Error().Err(err).Msg("Failed to write QR code response")
	}
}

// buildPayload turns the request parameters into the string to encode.
// Dynamic ids take precedence; the encoded payload is then the resolver URL
// so the destination stays mutable after printing.
func (h *Handler) buildPayload(r *http.Request) (string, error) {
	query := r.URL.Query()

	if id := query.Get("id"); id != "" {
		ctx, cancel := h.opCtx(r.Context())
		defer cancel()
		if _, err := h.store.GetCode(ctx, id); err != nil {
			return "", err
		}
		return qrpayload.ResolverURL(h.baseURL, id), nil
	}

	if content := query.Get("content"); content != "" {
		return content, nil
	}

	switch query.Get("type") {
	case "url", "":
		target := query.Get("url")
		if target == "" {
			return "", qrpayload.ErrEmptyContent
		}
		return target, nil
	case "wifi":
		if query.Get("ssid") == "" {
			return "", qrpayload.ErrEmptyContent
		}
		wifi := qrpayload.WiFi{
			SSID:     query.Get("ssid"),
			Password: query.Get("password"),
			Auth:     qrpayload.WiFiAuth(query.Get("auth")),
			Hidden:   query.Get("hidden") == "true",
		}
		return wifi.Payload(), nil
	case "phone":
		number := query.Get("number")
		if number == "" {
			return "", qrpayload.ErrEmptyContent
		}
		return qrpayload.Phone(number), nil
	case "social":
		if query.Get("username") == "" {
			return "", qrpayload.ErrEmptyContent
		}
		return qrpayload.Social(query.Get("platform"), query.Get("username"))
	default:
		return "", errors.New("unknown payload type")
	}
}
