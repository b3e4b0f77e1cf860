package urlutil

import (
	"testing"

	"github.com/deploymenttheory/go-pipeline-composer/internal/utils/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr string
	}{
		{"https://hooks.example.com/notify", ""},
		{"HTTP://example.com", ""},
		{"http://localhost:8080/x?y=1", ""},
		{"example.com/hook", "missing scheme"},
		{"ftp://example.com/file", "unsupported scheme 'ftp'"},
		{"https:///path-only", "missing host"},
		{"http://[::1", "invalid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, errors.ErrInvalidURL)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
