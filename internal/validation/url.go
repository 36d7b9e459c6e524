package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/pders01/bulletin/internal/config"
)

// EndpointValidator checks URLs before they are requested or handed to an
// external opener.
type EndpointValidator struct {
	AllowLocalhost  bool
	AllowPrivateIPs bool
	// RequireScheme rejects inputs without http:// or https:// instead of
	// assuming https.
	RequireScheme bool
	MaxLength     int
}

// NewEndpointValidator accepts local and private hosts, since the API backend
// usually runs on the same machine or network.
func NewEndpointValidator() *EndpointValidator {
	return &EndpointValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		MaxLength:       2048,
	}
}

// NewExternalURLValidator is for URLs that come from article payloads and are
// opened in a browser or media player.
func NewExternalURLValidator() *EndpointValidator {
	return &EndpointValidator{
		RequireScheme: true,
		MaxLength:     4096,
	}
}

// ValidateAndNormalize returns the normalized form of input or the first
// problem found.
func (v *EndpointValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'`") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	lower := strings.ToLower(input)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		if v.RequireScheme || strings.Contains(input, "://") {
			return "", fmt.Errorf("URL must use http or https protocol")
		}
		input = "https://" + input
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}
	if err := v.checkHost(parsed); err != nil {
		return "", err
	}
	if strings.Contains(parsed.Path, "..") {
		return "", fmt.Errorf("directory traversal patterns not allowed in URL path")
	}
	query := strings.ToLower(parsed.RawQuery)
	if strings.Contains(query, "<script") || strings.Contains(query, "javascript:") {
		return "", fmt.Errorf("suspicious query parameters detected")
	}

	return parsed.String(), nil
}

func (v *EndpointValidator) checkHost(u *url.URL) error {
	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("URL must have a valid hostname")
	}
	if port := u.Port(); port == "" && strings.HasSuffix(u.Host, ":") {
		return fmt.Errorf("invalid host format: empty port")
	}

	if !v.AllowLocalhost && isLocalhost(hostname) {
		return fmt.Errorf("localhost URLs are not permitted")
	}
	if ip := net.ParseIP(hostname); ip != nil {
		if ip.IsUnspecified() || ip.Equal(net.IPv4bcast) {
			return fmt.Errorf("unroutable address %s", hostname)
		}
		if !v.AllowPrivateIPs && isPrivateIP(ip) {
			return fmt.Errorf("private IP addresses are not permitted")
		}
	}
	return nil
}

// ValidateAPI checks the base URL and every endpoint resolved from cfg.
func ValidateAPI(cfg *config.Config) error {
	v := NewEndpointValidator()
	if _, err := v.ValidateAndNormalize(cfg.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}

	endpoints := []struct {
		key   string
		value string
	}{
		{"articles", cfg.API.Articles},
		{"article_detail", cfg.API.ArticleDetail},
		{"suggestions", cfg.API.Suggestions},
		{"search", cfg.API.Search},
		{"gold_prices", cfg.API.GoldPrices},
		{"exchange_rates", cfg.API.ExchangeRates},
		{"login", cfg.API.Login},
		{"register", cfg.API.Register},
	}
	for _, e := range endpoints {
		if strings.TrimSpace(e.value) == "" {
			return fmt.Errorf("api.%s is empty", e.key)
		}
		if _, err := v.ValidateAndNormalize(cfg.API.Endpoint(e.value)); err != nil {
			return fmt.Errorf("api.%s: %w", e.key, err)
		}
	}
	return nil
}

func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast()
}
