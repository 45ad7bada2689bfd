package webhook

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// ErrBlockedDestination reports a webhook target on a loopback, private or
// otherwise internal address.
var ErrBlockedDestination = errors.New("webhook: destination not allowed")

var blockedHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"0.0.0.0":   true,
	"::1":       true,
}

var blockedSuffixes = []string{".internal", ".local", ".localhost"}

// IsAllowedURL reports whether raw is an http(s) URL whose host is not an
// internal destination. Hostnames are checked lexically; the default client
// also re-checks the resolved address when dialing.
func IsAllowedURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "" || blockedHosts[host] {
		return false
	}
	for _, suffix := range blockedSuffixes {
		if strings.HasSuffix(host, suffix) {
			return false
		}
	}

	if ip := net.ParseIP(host); ip != nil && IsBlockedIP(ip) {
		return false
	}
	return true
}

// IsBlockedIP reports whether ip is loopback, private (RFC 1918 or ULA),
// link-local, unspecified or multicast.
func IsBlockedIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast() ||
		ip.IsUnspecified()
}

// dialControl refuses connections to blocked addresses after DNS resolution.
func dialControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return ErrBlockedDestination
	}
	ip := net.ParseIP(host)
	if ip == nil || IsBlockedIP(ip) {
		return ErrBlockedDestination
	}
	return nil
}
