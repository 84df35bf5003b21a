package qrpayload

import (
	"errors"
	"net/url"
)

var (
	ErrEmptyContent  = errors.New("content is required")
	ErrInvalidURL    = errors.New("invalid URL format")
	ErrInvalidScheme = errors.New("URL scheme must be http or https")
	ErrEmptyHost     = errors.New("URL host is required")
)

// ValidateTargetURL checks that a redirect destination is a usable web URL
func ValidateTargetURL(rawURL string) error {
	if rawURL == "" {
		return ErrEmptyContent
	}

	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return ErrInvalidURL
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return ErrInvalidScheme
	}

	if parsedURL.Host == "" {
		return ErrEmptyHost
	}

	return nil
}
