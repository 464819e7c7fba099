package generate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tokenlay/tokenlay-go/internal/headers"
	"github.com/tokenlay/tokenlay-go/internal/models"
	"github.com/tokenlay/tokenlay-go/internal/services"
	"github.com/tokenlay/tokenlay-go/internal/utils"
	"github.com/tokenlay/tokenlay-go/internal/utils/clientcache"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"google.golang.org/genai"
)

const sdkName = "gemini"

// GenerateService drives google genai clients pointed at the proxy.
type GenerateService struct {
	clients    *clientcache.Pool[*genai.Client]
	httpClient *http.Client
}

// Result is a generation together with the proxy's report about it.
type Result struct {
	Response *genai.GenerateContentResponse
	Metadata *models.ResponseMetadata
	Latency  time.Duration
}

// NewGenerateService creates a new generate service
func NewGenerateService(httpClient *http.Client) *GenerateService {
	return &GenerateService{
		clients:    clientcache.NewPool[*genai.Client](),
		httpClient: httpClient,
	}
}

// CreateClient returns the client for cfg and the key it is cached under.
func (gs *GenerateService) CreateClient(ctx context.Context, cfg models.ClientConfig) (*genai.Client, string, error) {
	key, err := services.ClientKey(cfg, sdkName)
	if err != nil {
		fiberlog.Warnf("[tokenlay] Failed to generate config hash: %v, creating new client without caching", err)
		client, err := gs.buildClient(ctx, cfg)
		return client, "", err
	}

	client, err := gs.clients.Acquire(key, func() (*genai.Client, error) {
		fiberlog.Debugf("[tokenlay] Creating new Gemini client (config hash: %s)", key[:8])
		return gs.buildClient(ctx, cfg)
	})
	if err != nil {
		return nil, "", err
	}

	return client, key, nil
}

// Reconfigure drops every cached client not built from cfg.
func (gs *GenerateService) Reconfigure(cfg models.ClientConfig) {
	key, err := services.ClientKey(cfg, sdkName)
	if err != nil {
		return
	}
	gs.clients.Retain(key)
}

// buildClient creates a new Gemini client with the proxy as its base URL
func (gs *GenerateService) buildClient(ctx context.Context, cfg models.ClientConfig) (*genai.Client, error) {
	timeout := services.CallTimeout(cfg)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.ProxyAPIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: gs.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: utils.JoinPath(cfg.ProxyBaseURL, ""),
			Headers: headers.ToHTTPHeader(headers.Defaults(cfg)),
			Timeout: &timeout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return client, nil
}

// SendRequest sends a non-streaming generate request with callHeaders scoped to this call
func (gs *GenerateService) SendRequest(
	ctx context.Context,
	client *genai.Client,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
	callHeaders map[string]string,
) (*Result, error) {
	callConfig := &genai.GenerateContentConfig{}
	if config != nil {
		copied := *config
		callConfig = &copied
	}
	if len(callHeaders) > 0 {
		httpOptions := genai.HTTPOptions{}
		if callConfig.HTTPOptions != nil {
			httpOptions = *callConfig.HTTPOptions
		}
		httpOptions.Headers = mergeHeader(httpOptions.Headers, headers.ToHTTPHeader(callHeaders))
		callConfig.HTTPOptions = &httpOptions
	}

	fiberlog.Debugf("[tokenlay] Sending Gemini generate request - model: %s", model)

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, model, contents, callConfig)
	latency := time.Since(start)
	if err != nil {
		fiberlog.Debugf("[tokenlay] Gemini request failed after %v: %v", latency, err)
		return nil, err
	}

	var respHeader http.Header
	if resp.SDKHTTPResponse != nil {
		respHeader = resp.SDKHTTPResponse.Headers
	}

	meta, err := services.ExtractMetadata(resp.ResponseID, respHeader)
	if err != nil {
		fiberlog.Errorf("[%s] Failed to decode proxy metadata: %v", resp.ResponseID, err)
		return nil, err
	}

	fiberlog.Debugf("[%s] Gemini request finished in %v", resp.ResponseID, latency)
	return &Result{Response: resp, Metadata: meta, Latency: latency}, nil
}

func mergeHeader(dst, src http.Header) http.Header {
	out := dst.Clone()
	if out == nil {
		out = make(http.Header, len(src))
	}
	for key, values := range src {
		out[key] = append([]string(nil), values...)
	}
	return out
}
