package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// TrustedProxies configures Echo to trust reverse proxy headers
// (X-Forwarded-For, X-Real-IP) from specific IP ranges.
//
// MailBridge typically runs behind a reverse proxy that terminates TLS.
// Without this config, c.RealIP() would always return the proxy's IP
// instead of the actual client, and the per-IP send rate limit would
// throttle every caller as one.
//
// The trustedCIDRs parameter specifies which proxy IPs to trust. Common values:
//   - "127.0.0.1/8"    -- localhost (docker host)
//   - "10.0.0.0/8"     -- Docker default bridge network
//   - "172.16.0.0/12"  -- Docker default bridge network (alternative range)
//   - "192.168.0.0/16" -- common LAN range
//   - "fd00::/8"       -- IPv6 private range
func TrustedProxies(e *echo.Echo, trustedCIDRs []string) {
	// Echo's IPExtractor determines how c.RealIP() resolves the client IP.
	e.IPExtractor = buildIPExtractor(trustedCIDRs)
}

// buildIPExtractor returns an Echo IPExtractor that trusts X-Forwarded-For
// and X-Real-IP headers only from connections originating in trusted CIDRs.
func buildIPExtractor(trustedCIDRs []string) echo.IPExtractor {
	var trusted []*net.IPNet
	for _, cidr := range trustedCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			// Skip invalid CIDRs; this runs once at startup.
			continue
		}
		trusted = append(trusted, network)
	}

	return func(req *http.Request) string {
		directIP := remoteAddrIP(req)

		// Only honor forwarding headers when the direct peer is trusted.
		if directIP != nil && ipInRanges(directIP, trusted) {
			// X-Forwarded-For may hold a chain; the first entry is the
			// original client.
			if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
				first := strings.TrimSpace(strings.Split(xff, ",")[0])
				if ip := net.ParseIP(first); ip != nil {
					return ip.String()
				}
			}
			if xrip := req.Header.Get("X-Real-IP"); xrip != "" {
				if ip := net.ParseIP(xrip); ip != nil {
					return ip.String()
				}
			}
		}

		if directIP != nil {
			return directIP.String()
		}
		return req.RemoteAddr
	}
}

// remoteAddrIP extracts the IP portion of req.RemoteAddr.
func remoteAddrIP(req *http.Request) net.IP {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		host = req.RemoteAddr
	}
	return net.ParseIP(host)
}

// ipInRanges reports whether ip falls inside any of the given networks.
func ipInRanges(ip net.IP, ranges []*net.IPNet) bool {
	for _, network := range ranges {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
