package api

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// checkPublicURL refuses URLs that would make the server fetch from its own
// network.
func (s *Server) checkPublicURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid URL scheme")
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "URL host is required")
	}
	if host == "localhost" || strings.HasSuffix(host, ".local") {
		return echo.NewHTTPError(http.StatusForbidden, "Internal network access forbidden")
	}

	ips, err := s.lookupIP(host)
	if err != nil || len(ips) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to resolve URL host")
	}
	for _, ip := range ips {
		if isPrivateOrSpecialIP(ip) {
			return echo.NewHTTPError(http.StatusForbidden, "Internal network access forbidden")
		}
	}
	return nil
}

func isPrivateOrSpecialIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsMulticast() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}

	if ip4 := ip.To4(); ip4 != nil {
		// carrier-grade NAT
		if ip4[0] == 100 && ip4[1]&0xC0 == 64 {
			return true
		}
	}

	return false
}
