package useragent

import (
	"net/http"
	"strings"
)

// Device types recorded on scan rows. Tablets count as Mobile.
const (
	DeviceMobile  = "Mobile"
	DeviceDesktop = "Desktop"
)

// CountryUnknown is recorded when no geolocation header is present.
const CountryUnknown = "Unknown"

// DeviceType extracts a coarse device classification from a user agent
func DeviceType(userAgent string) string {
	ua := strings.ToLower(userAgent)
	keywords := []string{"mobile", "android", "iphone", "ipod", "tablet", "ipad", "blackberry", "windows phone"}
	for _, keyword := range keywords {
		if strings.Contains(ua, keyword) {
			return DeviceMobile
		}
	}
	return DeviceDesktop
}

// Browser extracts the browser name from a user agent
func Browser(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "edg/") || strings.Contains(ua, "edge"):
		return "Edge"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr/"):
		return "Opera"
	case strings.Contains(ua, "chrome"):
		return "Chrome"
	case strings.Contains(ua, "firefox"):
		return "Firefox"
	case strings.Contains(ua, "safari"):
		return "Safari"
	case strings.Contains(ua, "bot"), strings.Contains(ua, "crawler"), strings.Contains(ua, "spider"):
		return "Bot"
	default:
		return "Other"
	}
}

// Country reads the geolocation header supplied by the edge network.
// X-Country-Code is checked first, then Cloudflare's CF-IPCountry.
func Country(header http.Header) string {
	if country := header.Get("X-Country-Code"); country != "" {
		return country
	}
	if country := header.Get("CF-IPCountry"); country != "" {
		return country
	}
	return CountryUnknown
}
