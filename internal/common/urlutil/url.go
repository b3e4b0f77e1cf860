package urlutil

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/deploymenttheory/go-pipeline-composer/internal/utils/errors"
)

// ValidateURL checks that rawURL is an absolute http or https URL with a host
func ValidateURL(rawURL string) error {
	parsedURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("%w: %s", errors.ErrInvalidURL, err.Error())
	}

	// Check scheme
	if parsedURL.Scheme == "" {
		return fmt.Errorf("%w: missing scheme (http:// or https://)", errors.ErrInvalidURL)
	}

	// Only allow HTTP and HTTPS
	scheme := strings.ToLower(parsedURL.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme '%s'", errors.ErrInvalidURL, parsedURL.Scheme)
	}

	// Check host
	if parsedURL.Host == "" {
		return fmt.Errorf("%w: missing host", errors.ErrInvalidURL)
	}

	return nil
}
