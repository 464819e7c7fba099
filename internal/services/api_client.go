package services

import (
	"net"
	"net/http"
	"time"

	"github.com/tokenlay/tokenlay-go/internal/headers"
	"github.com/tokenlay/tokenlay-go/internal/models"
	"github.com/tokenlay/tokenlay-go/internal/utils/clientcache"
)

// TransportConfig tunes the connection pool shared by every SDK client a
// tokenlay client builds.
type TransportConfig struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	DialTimeout         time.Duration
	KeepAlive           time.Duration
	TLSHandshakeTimeout time.Duration
}

// DefaultTransportConfig returns defaults suited to a single proxy host
func DefaultTransportConfig() *TransportConfig {
	return &TransportConfig{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 32,
		IdleConnTimeout:     90 * time.Second,
		DialTimeout:         10 * time.Second,
		KeepAlive:           30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// NewHTTPClient creates an HTTP client with connection pooling. It sets no
// overall timeout; per-call timeouts are applied by the SDKs.
func NewHTTPClient(config *TransportConfig) *http.Client {
	if config == nil {
		config = DefaultTransportConfig()
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: config.KeepAlive,
		}).DialContext,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		TLSHandshakeTimeout: config.TLSHandshakeTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{Transport: transport}
}

// ClientKey identifies an SDK client built from cfg. Credentials enter the
// key only as digests.
func ClientKey(cfg models.ClientConfig, sdk string) (string, error) {
	type keyFields struct {
		SDK             string
		ProxyKeyHash    string
		ProviderKeyHash string
		ProviderBaseURL string
		ProxyBaseURL    string
		Metadata        models.Metadata
		Headers         map[string]string
		TimeoutMs       int
		MaxRetries      int
	}

	return clientcache.Fingerprint(keyFields{
		SDK:             sdk,
		ProxyKeyHash:    clientcache.HashSecret(cfg.ProxyAPIKey),
		ProviderKeyHash: clientcache.HashSecret(cfg.ProviderAPIKey),
		ProviderBaseURL: cfg.ProviderBaseURL,
		ProxyBaseURL:    cfg.ProxyBaseURL,
		Metadata:        cfg.Metadata,
		Headers:         cfg.Headers,
		TimeoutMs:       cfg.TimeoutMs,
		MaxRetries:      MaxRetries(cfg),
	})
}

// CallTimeout converts the configured timeout to a duration.
func CallTimeout(cfg models.ClientConfig) time.Duration {
	return time.Duration(cfg.TimeoutMs) * time.Millisecond
}

// MaxRetries returns the configured retry count, zero when unset.
func MaxRetries(cfg models.ClientConfig) int {
	if cfg.MaxRetries == nil {
		return 0
	}
	return *cfg.MaxRetries
}

// ExtractMetadata decodes the proxy's headers for a response carrying
// responseID. A response without an identifier yields no metadata.
func ExtractMetadata(responseID string, h http.Header) (*models.ResponseMetadata, error) {
	if responseID == "" {
		return nil, nil
	}
	meta, err := headers.Decode(h)
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// ResponseHeader returns resp's headers, nil when no response was captured.
func ResponseHeader(resp *http.Response) http.Header {
	if resp == nil {
		return nil
	}
	return resp.Header
}
