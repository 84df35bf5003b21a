package qrpayload

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Payload builders for the generator's QR content types. Static codes encode
// the formatted content directly; dynamic codes encode the resolver URL so
// the destination can change without re-printing the image.

var ErrUnknownPlatform = errors.New("unknown social platform")

// WiFiAuth is the network authentication mode in a WIFI: payload
type WiFiAuth string

const (
	WiFiWPA    WiFiAuth = "WPA"
	WiFiWEP    WiFiAuth = "WEP"
	WiFiNoPass WiFiAuth = "nopass"
)

// WiFi describes a Wi-Fi join payload
type WiFi struct {
	SSID     string
	Password string
	Auth     WiFiAuth
	Hidden   bool
}

// escapeWiFi escapes the characters the WIFI: format treats as specials
func escapeWiFi(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`;`, `\;`,
		`,`, `\,`,
		`"`, `\"`,
		`:`, `\:`,
	)
	return replacer.Replace(s)
}

// Payload renders WIFI:S:<ssid>;T:<auth>;P:<password>;H:<true|false>;;
func (w WiFi) Payload() string {
	auth := w.Auth
	if auth == "" {
		auth = WiFiWPA
	}
	hidden := "false"
	if w.Hidden {
		hidden = "true"
	}
	return fmt.Sprintf("WIFI:S:%s;T:%s;P:%s;H:%s;;",
		escapeWiFi(w.SSID), auth, escapeWiFi(w.Password), hidden)
}

// Phone renders a tel: URI
func Phone(number string) string {
	return "tel:" + strings.TrimSpace(number)
}

// Social renders a platform profile URL
func Social(platform, username string) (string, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	switch strings.ToLower(platform) {
	case "instagram":
		return "https://instagram.com/" + username, nil
	case "tiktok":
		return "https://tiktok.com/@" + username, nil
	case "youtube":
		return "https://youtube.com/@" + username, nil
	default:
		return "", ErrUnknownPlatform
	}
}

// ResolverURL builds the payload for a dynamic code: the resolver endpoint
// with the public id as a query parameter.
func ResolverURL(baseURL, id string) string {
	return fmt.Sprintf("%s/resolve?id=%s", strings.TrimRight(baseURL, "/"), url.QueryEscape(id))
}

// ManageSyncURL builds the payload for a cross-device sync QR: the manage
// page with the encoded ownership entries as a query parameter.
func ManageSyncURL(baseURL, syncParam string) string {
	return fmt.Sprintf("%s/manage?sync=%s", strings.TrimRight(baseURL, "/"), url.QueryEscape(syncParam))
}
