// Package validation checks user supplied locations before they are used
// for requests or file writes.
package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// ValidateBaseURI checks the root URL of the backend API. Only absolute
// http and https URLs without query or fragment are accepted, since
// endpoint paths are appended to it.
func ValidateBaseURI(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	for _, r := range rawURL {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("URL contains whitespace or control characters")
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %q (only http/https allowed)", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must have a valid hostname")
	}

	if parsed.RawQuery != "" || parsed.Fragment != "" || strings.HasSuffix(rawURL, "?") {
		return fmt.Errorf("URL must not contain a query or fragment")
	}

	return nil
}
