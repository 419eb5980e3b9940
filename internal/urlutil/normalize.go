// Package urlutil canonicalizes and inspects bookmark URLs.
package urlutil

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Normalize returns a canonical form of rawURL for equality comparison.
// The result has the shape scheme://host[:port]path[?query] where:
// - the port is dropped when it is the scheme's default
// - trailing slashes are stripped from the path ("/" becomes "")
// - user info and fragment are dropped
// - internationalized hosts are converted to punycode
// - the whole string is lowercased
//
// Distinct paths and distinct query strings stay distinct.
// Normalize never fails: input that cannot be parsed as an absolute URL is
// trimmed and lowercased instead.
func Normalize(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.ToLower(trimmed)
	}

	scheme := strings.ToLower(parsed.Scheme)

	host := parsed.Hostname()
	if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
		host = ascii
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]" // IPv6 literal
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)

	if port := parsed.Port(); port != "" && port != defaultPorts[scheme] {
		b.WriteString(":")
		b.WriteString(port)
	}

	b.WriteString(strings.TrimRight(parsed.EscapedPath(), "/"))

	if parsed.RawQuery != "" {
		b.WriteString("?")
		b.WriteString(parsed.RawQuery)
	}

	return strings.ToLower(b.String())
}

// Equivalent reports whether two URLs normalize to the same string.
func Equivalent(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Host returns the lowercased host name of rawURL without port, or "" if it has none.
func Host(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := parsed.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(strings.Trim(host, "[]"))
}
