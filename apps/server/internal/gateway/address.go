package gateway

import (
	"net"
	"net/http"
	"strings"
)

// AddressKey derives the identity key for a request: the client IP. Port is
// dropped so every tab from one origin shares a player. Behind a proxy the
// X-Real-IP header is trusted when trustProxy is set.
func AddressKey(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			if parsed := net.ParseIP(ip); parsed != nil {
				return parsed.String()
			}
			return ""
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if parsed := net.ParseIP(strings.TrimSpace(host)); parsed != nil {
		return parsed.String()
	}
	return ""
}
