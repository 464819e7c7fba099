package tokenlay

import (
	"context"

	"github.com/tokenlay/tokenlay-go/internal/headers"
	"github.com/tokenlay/tokenlay-go/internal/services/usage"

	"google.golang.org/genai"
)

// GenerateContentParams is a Gemini generate request plus metadata for this call only.
type GenerateContentParams struct {
	Model    string
	Contents []*genai.Content
	Config   *genai.GenerateContentConfig
	Metadata Metadata
}

type GenerateContentResult = Result[genai.GenerateContentResponse]

// GenerateContent sends a Gemini generate request through the proxy.
func (c *Client) GenerateContent(ctx context.Context, params GenerateContentParams) (*GenerateContentResult, error) {
	cfg, client, err := c.generateClient(ctx)
	if err != nil {
		return nil, err
	}

	res, err := c.generate.SendRequest(ctx, client, params.Model, params.Contents, params.Config, headers.Encode(params.Metadata))
	if err != nil {
		return nil, err
	}

	if res.Metadata != nil {
		c.record(ctx, usage.RecordParams{
			RequestID: res.Response.ResponseID,
			Provider:  ProviderGemini,
			Operation: "generate_content",
			Model:     params.Model,
			Metadata:  mergedMetadata(cfg.Metadata, params.Metadata),
			Response:  *res.Metadata,
			Latency:   res.Latency,
		})
	}

	return &GenerateContentResult{Response: res.Response, Metadata: res.Metadata}, nil
}
