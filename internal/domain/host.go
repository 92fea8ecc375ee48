package domain

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
	"golang.org/x/net/publicsuffix"
)

// ErrNoDomain is returned when a URL has no registrable domain (IP
// addresses, bare public suffixes, empty hosts).
var ErrNoDomain = errors.New("no registrable domain")

const normalizeFlags = purell.FlagLowercaseScheme |
	purell.FlagLowercaseHost |
	purell.FlagRemoveDefaultPort |
	purell.FlagRemoveFragment

// RegistrableDomain derives the organisation-level domain of raw, so that
// "https://mail.Google.co.uk/x" yields "google.co.uk". Scheme-less input such
// as "example.com" is accepted.
func RegistrableDomain(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNoDomain
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	normalized, err := purell.NormalizeURLString(raw, normalizeFlags)
	if err != nil {
		return "", fmt.Errorf("normalize %q: %w", raw, err)
	}
	parsed, err := url.Parse(normalized)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", raw, err)
	}

	host := strings.TrimSuffix(parsed.Hostname(), ".")
	if host == "" || net.ParseIP(host) != nil {
		return "", ErrNoDomain
	}

	domain, ok := icannPlusOne(host)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoDomain, host)
	}
	return domain, nil
}

// icannPlusOne is publicsuffix.EffectiveTLDPlusOne restricted to the ICANN
// section of the list: private suffixes such as github.io or blogspot.com
// are registrable domains themselves.
func icannPlusOne(host string) (string, bool) {
	if strings.HasPrefix(host, ".") || strings.Contains(host, "..") {
		return "", false
	}

	suffix := icannSuffix(host)
	if len(host) <= len(suffix) || !strings.HasSuffix(host, "."+suffix) {
		return "", false
	}

	rest := host[:len(host)-len(suffix)-1]
	return rest[strings.LastIndex(rest, ".")+1:] + "." + suffix, true
}

// icannSuffix strips leading labels off a private match until an ICANN rule
// (or the implicit "*" rule for unlisted TLDs) applies.
func icannSuffix(host string) string {
	suffix, icann := publicsuffix.PublicSuffix(host)
	for !icann {
		dot := strings.IndexByte(suffix, '.')
		if dot < 0 {
			break
		}
		suffix, icann = publicsuffix.PublicSuffix(suffix[dot+1:])
	}
	return suffix
}
