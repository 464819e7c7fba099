package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		endpoint string
	}{
		{"https://h/", "/p"},
		{"https://h", "/p"},
		{"https://h/", "p"},
		{"https://h", "p"},
	}

	for _, tt := range tests {
		assert.Equal(t, "https://h/v1/p", BuildURL(tt.base, tt.endpoint), "base=%q endpoint=%q", tt.base, tt.endpoint)
	}
}

func TestBuildURLStripsOnlyOneSlash(t *testing.T) {
	assert.Equal(t, "https://h//v1//p", BuildURL("https://h//", "//p"))
}

func TestBuildURLEmptyEndpoint(t *testing.T) {
	assert.Equal(t, "https://api.tokenlay.com/v1/", BuildURL("https://api.tokenlay.com/", ""))
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "https://h/health", JoinPath("https://h/", "/health"))
	assert.Equal(t, "https://h/health", JoinPath("https://h", "health"))
}
