package tokenlay

import (
	"context"

	"github.com/tokenlay/tokenlay-go/internal/headers"
	"github.com/tokenlay/tokenlay-go/internal/services/usage"

	"github.com/anthropics/anthropic-sdk-go"
)

// MessageParams is an Anthropic messages request plus metadata for this call only.
type MessageParams struct {
	Request  anthropic.MessageNewParams
	Metadata Metadata
}

type MessageResult = Result[anthropic.Message]

// CreateMessage sends an Anthropic messages request through the proxy. The
// client's config is used as is, so Provider and ProviderBaseURL should name
// Anthropic.
func (c *Client) CreateMessage(ctx context.Context, params MessageParams) (*MessageResult, error) {
	cfg, client := c.messagesClient()

	res, err := c.messages.SendMessage(ctx, client, params.Request, headers.Encode(params.Metadata))
	if err != nil {
		return nil, err
	}

	if res.Metadata != nil {
		c.record(ctx, usage.RecordParams{
			RequestID: res.Message.ID,
			Provider:  ProviderAnthropic,
			Operation: "messages",
			Model:     string(params.Request.Model),
			Metadata:  mergedMetadata(cfg.Metadata, params.Metadata),
			Response:  *res.Metadata,
			Latency:   res.Latency,
		})
	}

	return &MessageResult{Response: res.Message, Metadata: res.Metadata}, nil
}
