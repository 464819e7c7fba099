package messages

import (
	"context"
	"net/http"
	"time"

	"github.com/tokenlay/tokenlay-go/internal/headers"
	"github.com/tokenlay/tokenlay-go/internal/models"
	"github.com/tokenlay/tokenlay-go/internal/services"
	"github.com/tokenlay/tokenlay-go/internal/utils"
	"github.com/tokenlay/tokenlay-go/internal/utils/clientcache"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

const sdkName = "anthropic"

// MessagesService drives anthropic-sdk-go clients pointed at the proxy.
type MessagesService struct {
	clients    *clientcache.Pool[*anthropic.Client]
	httpClient *http.Client
}

// Result is a message together with the proxy's report about it.
type Result struct {
	Message  *anthropic.Message
	Metadata *models.ResponseMetadata
	Latency  time.Duration
}

// NewMessagesService creates a new messages service
func NewMessagesService(httpClient *http.Client) *MessagesService {
	return &MessagesService{
		clients:    clientcache.NewPool[*anthropic.Client](),
		httpClient: httpClient,
	}
}

// CreateClient returns the client for cfg and the key it is cached under.
func (ms *MessagesService) CreateClient(cfg models.ClientConfig) (*anthropic.Client, string) {
	key, err := services.ClientKey(cfg, sdkName)
	if err != nil {
		fiberlog.Warnf("[tokenlay] Failed to generate config hash: %v, creating new client without caching", err)
		return ms.buildClient(cfg), ""
	}

	client, err := ms.clients.Acquire(key, func() (*anthropic.Client, error) {
		fiberlog.Debugf("[tokenlay] Creating new Anthropic client (config hash: %s)", key[:8])
		return ms.buildClient(cfg), nil
	})
	if err != nil {
		fiberlog.Warnf("[tokenlay] Unexpected error from client pool: %v, creating new client", err)
		return ms.buildClient(cfg), ""
	}

	return client, key
}

// Reconfigure drops every cached client not built from cfg.
func (ms *MessagesService) Reconfigure(cfg models.ClientConfig) {
	key, err := services.ClientKey(cfg, sdkName)
	if err != nil {
		return
	}
	ms.clients.Retain(key)
}

// buildClient creates a new Anthropic client whose requests land on <proxy>/v1/messages
// CachedClients reports how many SDK clients the service holds.
func (ms *MessagesService) CachedClients() int {
	return ms.clients.Len()
}

func (ms *MessagesService) buildClient(cfg models.ClientConfig) *anthropic.Client {
	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.ProxyAPIKey),
		option.WithBaseURL(utils.JoinPath(cfg.ProxyBaseURL, "")),
		option.WithRequestTimeout(services.CallTimeout(cfg)),
		option.WithMaxRetries(services.MaxRetries(cfg)),
	}

	if ms.httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(ms.httpClient))
	}

	for key, value := range headers.Defaults(cfg) {
		clientOpts = append(clientOpts, option.WithHeader(key, value))
	}

	client := anthropic.NewClient(clientOpts...)
	return &client
}

// SendMessage sends a non-streaming message request with callHeaders scoped to this call
func (ms *MessagesService) SendMessage(
	ctx context.Context,
	client *anthropic.Client,
	params anthropic.MessageNewParams,
	callHeaders map[string]string,
) (*Result, error) {
	var raw *http.Response
	opts := make([]option.RequestOption, 0, len(callHeaders)+1)
	opts = append(opts, option.WithResponseInto(&raw))
	for key, value := range callHeaders {
		opts = append(opts, option.WithHeader(key, value))
	}

	fiberlog.Debugf("[tokenlay] Sending Anthropic message - model: %s, max_tokens: %d", params.Model, params.MaxTokens)

	start := time.Now()
	message, err := client.Messages.New(ctx, params, opts...)
	latency := time.Since(start)
	if err != nil {
		fiberlog.Debugf("[tokenlay] Anthropic message failed after %v: %v", latency, err)
		return nil, err
	}

	meta, err := services.ExtractMetadata(message.ID, services.ResponseHeader(raw))
	if err != nil {
		fiberlog.Errorf("[%s] Failed to decode proxy metadata: %v", message.ID, err)
		return nil, err
	}

	fiberlog.Debugf("[%s] Anthropic message finished in %v - usage: input:%d, output:%d",
		message.ID, latency, message.Usage.InputTokens, message.Usage.OutputTokens)
	return &Result{Message: message, Metadata: meta, Latency: latency}, nil
}
