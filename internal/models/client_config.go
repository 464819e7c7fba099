package models

import "maps"

// ProviderName identifies the upstream API the proxy forwards to.
type ProviderName string

const (
	ProviderOpenAI    ProviderName = "openai"
	ProviderAnthropic ProviderName = "anthropic"
	ProviderGemini    ProviderName = "gemini"
)

// Metadata is a flat set of key-value pairs sent to the proxy as x-tokenlay-* headers.
// An empty value means the key is absent and is never sent.
type Metadata map[string]string

// ClientConfig holds everything needed to build a proxied provider client.
type ClientConfig struct {
	ProxyAPIKey     string            `yaml:"proxy_api_key" json:"proxy_api_key,omitzero"`
	ProviderAPIKey  string            `yaml:"provider_api_key" json:"provider_api_key,omitzero"`
	Provider        ProviderName      `yaml:"provider,omitempty" json:"provider,omitzero"`
	ProviderBaseURL string            `yaml:"provider_base_url,omitempty" json:"provider_base_url,omitzero"`
	ProxyBaseURL    string            `yaml:"proxy_base_url,omitempty" json:"proxy_base_url,omitzero"`
	Metadata        Metadata          `yaml:"metadata,omitempty" json:"metadata,omitzero"`
	Headers         map[string]string `yaml:"headers,omitempty" json:"headers,omitzero"`
	TimeoutMs       int               `yaml:"timeout_ms,omitempty" json:"timeout_ms,omitzero"`
	MaxRetries      *int              `yaml:"max_retries,omitempty" json:"max_retries,omitzero"`
	HealthTimeoutMs int               `yaml:"health_timeout_ms,omitempty" json:"health_timeout_ms,omitzero"`
	LogLevel        string            `yaml:"log_level,omitempty" json:"log_level,omitzero"`
	Usage           *DatabaseConfig   `yaml:"usage,omitempty" json:"usage,omitzero"`
}

// Clone returns a copy that shares no maps or pointers with c.
func (c ClientConfig) Clone() ClientConfig {
	out := c
	out.Metadata = c.Metadata.Clone()
	if c.Headers != nil {
		out.Headers = make(map[string]string, len(c.Headers))
		maps.Copy(out.Headers, c.Headers)
	}
	if c.MaxRetries != nil {
		retries := *c.MaxRetries
		out.MaxRetries = &retries
	}
	if c.Usage != nil {
		usage := *c.Usage
		out.Usage = &usage
	}
	return out
}

// Clone copies m. A nil map stays nil.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	maps.Copy(out, m)
	return out
}

// Defined returns the entries of m that carry a value.
func (m Metadata) Defined() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		if v == "" {
			continue
		}
		out[k] = v
	}
	return out
}
