package security

import (
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// Blacklist is the static quishing defense: redirect targets whose host
// matches a blacklisted domain are sent to a warning page instead of being
// followed. Matching is by host suffix so subdomains are covered.
type Blacklist struct {
	enabled bool
	domains []string
}

// defaultDomains lists known shortener / malware hosts commonly abused to
// hide a QR destination behind a second redirect.
func defaultDomains() []string {
	return []string{
		"bit.ly",
		"tinyurl.com",
		"malware-site.net",
		"phish-link.org",
	}
}

// NewBlacklist creates a blacklist from the built-in domains plus extras.
func NewBlacklist(enabled bool, extra []string) *Blacklist {
	domains := defaultDomains()
	for _, domain := range extra {
		domains = append(domains, strings.ToLower(domain))
	}
	return &Blacklist{
		enabled: enabled,
		domains: domains,
	}
}

// Match reports whether the target URL's host is blacklisted.
func (b *Blacklist) Match(target string) bool {
	if !b.enabled {
		return false
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}

	for _, domain := range b.domains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			log.Warn().Str("target", target).Str("domain", domain).Msg("Target blocked by domain blacklist")
			return true
		}
	}
	return false
}

// Add appends a domain to the blacklist.
func (b *Blacklist) Add(domain string) {
	b.domains = append(b.domains, strings.ToLower(domain))
}

// Domains returns the current blacklist.
func (b *Blacklist) Domains() []string {
	return b.domains
}
