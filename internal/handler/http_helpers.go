package handler

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/logging"
)

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func parseIntParam(c *gin.Context, key string) (int, error) {
	value, err := strconv.Atoi(c.Param(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return value, nil
}

// ErrDisallowedHost is returned when the request Host is not in the allowed list.
var ErrDisallowedHost = errors.New("request host is not allowed")

var hostPattern = regexp.MustCompile(`^([a-z0-9.-]+|\[[a-f0-9]*:[a-f0-9.:]+\])(:[0-9]+)?$`)

// absoluteURL joins path onto the configured site URL or, failing that,
// onto the scheme and validated host of the current request.
func (a *API) absoluteURL(c *gin.Context, path string) (string, error) {
	if a.siteBaseURL != "" {
		return a.siteBaseURL + path, nil
	}

	host, ok := a.requestHost(c.Request.Host)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrDisallowedHost, c.Request.Host)
	}

	return a.requestScheme(c) + "://" + host + path, nil
}

// requestHost lowercases raw and checks its domain part against allowedHosts.
func (a *API) requestHost(raw string) (string, bool) {
	host := strings.ToLower(strings.TrimSpace(raw))
	if !hostPattern.MatchString(host) {
		return "", false
	}

	domain := host
	if strings.HasPrefix(host, "[") {
		domain = host[:strings.Index(host, "]")+1]
	} else if i := strings.LastIndex(host, ":"); i >= 0 {
		domain = host[:i]
	}
	domain = strings.TrimSuffix(domain, ".")

	for _, pattern := range a.allowedHosts {
		pattern = strings.ToLower(pattern)
		switch {
		case pattern == "*":
			return host, true
		case strings.HasPrefix(pattern, "."):
			if domain == pattern[1:] || strings.HasSuffix(domain, pattern) {
				return host, true
			}
		case domain == pattern:
			return host, true
		}
	}
	return "", false
}

// requestScheme honours X-Forwarded-Proto only from trusted proxies and
// only for http or https.
func (a *API) requestScheme(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if !a.fromTrustedProxy(c.RemoteIP()) {
		return scheme
	}

	forwarded := strings.ToLower(strings.TrimSpace(strings.Split(c.GetHeader("X-Forwarded-Proto"), ",")[0]))
	if forwarded == "http" || forwarded == "https" {
		scheme = forwarded
	}
	return scheme
}

func (a *API) fromTrustedProxy(remote string) bool {
	ip := net.ParseIP(remote)
	if ip == nil {
		return false
	}
	for _, network := range a.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// parseProxies turns IPs and CIDRs into networks, skipping invalid entries.
func parseProxies(entries []string) []*net.IPNet {
	networks := make([]*net.IPNet, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if !strings.Contains(entry, "/") {
			if ip := net.ParseIP(entry); ip != nil {
				bits := 32
				if ip.To4() == nil {
					bits = 128
				}
				entry = fmt.Sprintf("%s/%d", entry, bits)
			}
		}
		_, network, err := net.ParseCIDR(entry)
		if err != nil {
			logging.Warn().Str("proxy", entry).Msg("ignoring invalid trusted proxy")
			continue
		}
		networks = append(networks, network)
	}
	return networks
}

func (a *API) internalError(c *gin.Context, template string, err error, data gin.H) {
	c.Error(err)
	if data == nil {
		data = gin.H{}
	}
	data["error"] = "Something went wrong. Please try again later."
	a.renderHTML(c, http.StatusInternalServerError, template, data)
}
