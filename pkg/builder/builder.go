package builder

import (
	"maps"
	"time"

	"github.com/tokenlay/tokenlay-go/internal/models"
	"github.com/tokenlay/tokenlay-go/pkg/tokenlay"
)

// Builder assembles a client configuration fluently. Nothing is validated
// until the client is created.
type Builder struct {
	cfg  models.ClientConfig
	opts []tokenlay.Option
}

func New(proxyAPIKey, providerAPIKey string) *Builder {
	return &Builder{
		cfg: models.ClientConfig{
			ProxyAPIKey:    proxyAPIKey,
			ProviderAPIKey: providerAPIKey,
			Metadata:       models.Metadata{},
			Headers:        map[string]string{},
		},
	}
}

func (b *Builder) ProxyBaseURL(url string) *Builder {
	b.cfg.ProxyBaseURL = url
	return b
}

// WithMetadata adds global metadata. Later calls overwrite earlier keys.
func (b *Builder) WithMetadata(metadata map[string]string) *Builder {
	maps.Copy(b.cfg.Metadata, metadata)
	return b
}

// WithHeader adds a static header sent on every call.
func (b *Builder) WithHeader(key, value string) *Builder {
	b.cfg.Headers[key] = value
	return b
}

func (b *Builder) Timeout(d time.Duration) *Builder {
	b.cfg.TimeoutMs = int(d.Milliseconds())
	return b
}

func (b *Builder) MaxRetries(n int) *Builder {
	b.cfg.MaxRetries = &n
	return b
}

func (b *Builder) HealthTimeout(d time.Duration) *Builder {
	b.cfg.HealthTimeoutMs = int(d.Milliseconds())
	return b
}

func (b *Builder) LogLevel(level string) *Builder {
	b.cfg.LogLevel = level
	return b
}

// WithOption passes opt through to the client.
func (b *Builder) WithOption(opt tokenlay.Option) *Builder {
	b.opts = append(b.opts, opt)
	return b
}

// Build returns a copy of the configuration built so far.
func (b *Builder) Build() tokenlay.Config {
	return b.cfg.Clone()
}

// Client validates the configuration and creates the client.
func (b *Builder) Client() (*tokenlay.Client, error) {
	return tokenlay.New(b.Build(), b.opts...)
}
