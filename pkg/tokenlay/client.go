// Package tokenlay routes provider SDK calls through the Tokenlay proxy.
//
// A Client owns one provider SDK client whose base URL is the proxy. The real
// provider credential and base URL travel as x-tokenlay-provider-key and
// x-tokenlay-provider-base headers; the proxy is trusted with both. Global
// metadata is baked into the SDK client's default headers, per-call metadata
// is sent as call-scoped headers.
//
// UpdateMetadata and UpdateProviderKey rebuild the owned SDK client. Calls
// started after an update carry the new headers; calls already in flight keep
// the headers they started with.
package tokenlay

import (
	"context"
	"maps"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tokenlay/tokenlay-go/internal/config"
	"github.com/tokenlay/tokenlay-go/internal/models"
	"github.com/tokenlay/tokenlay-go/internal/services"
	"github.com/tokenlay/tokenlay-go/internal/services/anthropic/messages"
	"github.com/tokenlay/tokenlay-go/internal/services/chat/completions"
	"github.com/tokenlay/tokenlay-go/internal/services/database"
	"github.com/tokenlay/tokenlay-go/internal/services/gemini/generate"
	"github.com/tokenlay/tokenlay-go/internal/services/health"
	"github.com/tokenlay/tokenlay-go/internal/services/usage"

	"github.com/anthropics/anthropic-sdk-go"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/openai/openai-go/v2"
	"google.golang.org/genai"
)

// UsageRecorder receives one row per call that returned proxy metadata.
type UsageRecorder interface {
	Record(ctx context.Context, record models.CallRecord) (*models.CallRecord, error)
}

// Option customizes a Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	recorder   UsageRecorder
}

// WithHTTPClient sets the HTTP client every SDK client uses.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithUsageRecorder sends call records to recorder instead of the ledger
// described by Config.Usage.
func WithUsageRecorder(recorder UsageRecorder) Option {
	return func(o *options) { o.recorder = recorder }
}

// Client is safe for concurrent use.
type Client struct {
	mu         sync.RWMutex
	cfg        models.ClientConfig
	chatClient *openai.Client

	chat     *completions.CompletionService
	messages *messages.MessagesService
	generate *generate.GenerateService
	health   *health.Checker

	recorder UsageRecorder
	ledger   *database.DB
}

// New validates cfg and builds the proxied SDK client. It fails with
// ErrMissingCredential before allocating anything when a key is empty.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	effective := config.ApplyDefaults(cfg)
	config.SetupLogLevel(effective.LogLevel)

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = services.NewHTTPClient(nil)
	}

	c := &Client{
		cfg:      effective,
		chat:     completions.NewCompletionService(httpClient),
		messages: messages.NewMessagesService(httpClient),
		generate: generate.NewGenerateService(httpClient),
		health: health.NewChecker(
			effective.ProxyBaseURL,
			effective.ProxyAPIKey,
			time.Duration(effective.HealthTimeoutMs)*time.Millisecond,
		),
		recorder: o.recorder,
	}

	c.chatClient, _ = c.chat.CreateClient(effective)

	if c.recorder == nil && effective.Usage != nil {
		db, err := database.New(*effective.Usage)
		if err != nil {
			return nil, err
		}
		svc := usage.NewService(db.DB)
		if err := svc.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
		c.ledger = db
		c.recorder = svc
		fiberlog.Debugf("[tokenlay] Usage ledger ready - driver: %s", db.DriverName())
	}

	fiberlog.Debugf("[tokenlay] Client ready - proxy: %s, provider: %s (%s)",
		effective.ProxyBaseURL, effective.Provider, effective.ProviderBaseURL)
	return c, nil
}

// Config returns a copy of the effective configuration.
func (c *Client) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.Clone()
}

// Metadata returns a copy of the global metadata.
func (c *Client) Metadata() Metadata {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.Metadata.Clone()
}

// UpdateMetadata merges the defined entries into the global metadata, new
// values winning, and rebuilds the SDK client.
func (c *Client) UpdateMetadata(entries Metadata) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.cfg.Clone()
	maps.Copy(next.Metadata, entries.Defined())
	c.reconfigure(next)
}

// UpdateProviderKey replaces the provider credential and rebuilds the SDK client.
func (c *Client) UpdateProviderKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return models.NewMissingCredentialError("provider_api_key")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.cfg.Clone()
	next.ProviderAPIKey = key
	c.reconfigure(next)
	return nil
}

// reconfigure must be called with c.mu held.
func (c *Client) reconfigure(next models.ClientConfig) {
	c.chatClient, _ = c.chat.CreateClient(next)
	c.chat.Reconfigure(next)
	c.messages.Reconfigure(next)
	c.generate.Reconfigure(next)
	c.cfg = next
	fiberlog.Debugf("[tokenlay] Client reconfigured - metadata keys: %d", len(next.Metadata))
}

// messagesClient acquires under the read lock so a concurrent update cannot
// retain the new key and then see this stale client re-inserted.
func (c *Client) messagesClient() (models.ClientConfig, *anthropic.Client) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	client, _ := c.messages.CreateClient(c.cfg)
	return c.cfg, client
}

func (c *Client) generateClient(ctx context.Context) (models.ClientConfig, *genai.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	client, _, err := c.generate.CreateClient(ctx, c.cfg)
	return c.cfg, client, err
}

func (c *Client) snapshot() (models.ClientConfig, *openai.Client) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg, c.chatClient
}

// HealthCheck probes <proxy>/health. It never returns an error; failures are
// reported in the result.
//
// The probe runs on its own fasthttp client bounded by HealthTimeoutMs or the
// ctx deadline, whichever is sooner. ctx is checked once before the request;
// cancelling it mid-request does not abort the probe. The HTTP client passed
// with WithHTTPClient and the HTTP_PROXY/HTTPS_PROXY variables are not used.
func (c *Client) HealthCheck(ctx context.Context) HealthResult {
	return c.health.Check(ctx)
}

// Close releases the usage ledger the client opened, if any.
func (c *Client) Close() error {
	if c.ledger == nil {
		return nil
	}
	return c.ledger.Close()
}

func (c *Client) record(ctx context.Context, params usage.RecordParams) {
	if c.recorder == nil {
		return
	}

	record, err := usage.NewCallRecord(params)
	if err != nil {
		fiberlog.Warnf("[%s] Failed to build usage record: %v", params.RequestID, err)
		return
	}

	if _, err := c.recorder.Record(ctx, record); err != nil {
		fiberlog.Warnf("[%s] Failed to record usage: %v", params.RequestID, err)
	}
}
