package completions

import (
	"context"
	"net/http"
	"time"

	"github.com/tokenlay/tokenlay-go/internal/headers"
	"github.com/tokenlay/tokenlay-go/internal/models"
	"github.com/tokenlay/tokenlay-go/internal/services"
	"github.com/tokenlay/tokenlay-go/internal/utils"
	"github.com/tokenlay/tokenlay-go/internal/utils/clientcache"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/openai/openai-go/v2"
	openaiOption "github.com/openai/openai-go/v2/option"
)

const sdkName = "openai"

// CompletionService drives openai-go clients pointed at the proxy.
type CompletionService struct {
	clients    *clientcache.Pool[*openai.Client]
	httpClient *http.Client
}

// Result is a completion together with the proxy's report about it.
type Result struct {
	Completion *openai.ChatCompletion
	Metadata   *models.ResponseMetadata
	Latency    time.Duration
}

// NewCompletionService creates a new completion service. A nil httpClient
// leaves the SDK's default client in place.
func NewCompletionService(httpClient *http.Client) *CompletionService {
	return &CompletionService{
		clients:    clientcache.NewPool[*openai.Client](),
		httpClient: httpClient,
	}
}

// CreateClient returns the client for cfg and the key it is cached under.
func (cs *CompletionService) CreateClient(cfg models.ClientConfig) (*openai.Client, string) {
	key, err := services.ClientKey(cfg, sdkName)
	if err != nil {
		fiberlog.Warnf("[tokenlay] Failed to generate config hash: %v, creating new client without caching", err)
		return cs.buildClient(cfg), ""
	}

	client, err := cs.clients.Acquire(key, func() (*openai.Client, error) {
		fiberlog.Debugf("[tokenlay] Creating new OpenAI client (config hash: %s)", key[:8])
		return cs.buildClient(cfg), nil
	})
	if err != nil {
		fiberlog.Warnf("[tokenlay] Unexpected error from client pool: %v, creating new client", err)
		return cs.buildClient(cfg), ""
	}

	return client, key
}

// Reconfigure drops every cached client not built from cfg.
func (cs *CompletionService) Reconfigure(cfg models.ClientConfig) {
	key, err := services.ClientKey(cfg, sdkName)
	if err != nil {
		return
	}
	cs.clients.Retain(key)
}

// CachedClients reports how many SDK clients the service holds.
func (cs *CompletionService) CachedClients() int {
	return cs.clients.Len()
}

func (cs *CompletionService) buildClient(cfg models.ClientConfig) *openai.Client {
	opts := []openaiOption.RequestOption{
		openaiOption.WithAPIKey(cfg.ProxyAPIKey),
		openaiOption.WithBaseURL(utils.BuildURL(cfg.ProxyBaseURL, "")),
		openaiOption.WithRequestTimeout(services.CallTimeout(cfg)),
		openaiOption.WithMaxRetries(services.MaxRetries(cfg)),
	}

	if cs.httpClient != nil {
		opts = append(opts, openaiOption.WithHTTPClient(cs.httpClient))
	}

	for key, value := range headers.Defaults(cfg) {
		opts = append(opts, openaiOption.WithHeader(key, value))
	}

	client := openai.NewClient(opts...)
	return &client
}

// SendCompletion forwards params unchanged with callHeaders scoped to this
// call. SDK errors are returned as they are.
func (cs *CompletionService) SendCompletion(
	ctx context.Context,
	client *openai.Client,
	params openai.ChatCompletionNewParams,
	callHeaders map[string]string,
) (*Result, error) {
	var raw *http.Response
	opts := make([]openaiOption.RequestOption, 0, len(callHeaders)+1)
	opts = append(opts, openaiOption.WithResponseInto(&raw))
	for key, value := range callHeaders {
		opts = append(opts, openaiOption.WithHeader(key, value))
	}

	fiberlog.Debugf("[tokenlay] Sending chat completion - model: %s, call headers: %d", params.Model, len(callHeaders))

	start := time.Now()
	completion, err := client.Chat.Completions.New(ctx, params, opts...)
	latency := time.Since(start)
	if err != nil {
		fiberlog.Debugf("[tokenlay] Chat completion failed after %v: %v", latency, err)
		return nil, err
	}

	meta, err := services.ExtractMetadata(completion.ID, services.ResponseHeader(raw))
	if err != nil {
		fiberlog.Errorf("[%s] Failed to decode proxy metadata: %v", completion.ID, err)
		return nil, err
	}

	fiberlog.Debugf("[%s] Chat completion finished in %v", completion.ID, latency)
	return &Result{Completion: completion, Metadata: meta, Latency: latency}, nil
}
