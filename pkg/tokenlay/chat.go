package tokenlay

import (
	"context"

	"github.com/tokenlay/tokenlay-go/internal/headers"
	"github.com/tokenlay/tokenlay-go/internal/models"
	"github.com/tokenlay/tokenlay-go/internal/services/usage"

	"github.com/openai/openai-go/v2"
	"golang.org/x/sync/errgroup"
)

const defaultBatchLimit = 8

// ChatCompletionParams is a chat completion request plus metadata for this call only.
type ChatCompletionParams struct {
	Request  openai.ChatCompletionNewParams
	Metadata Metadata
}

type ChatCompletionResult = Result[openai.ChatCompletion]

// BatchResult holds the outcome of one call in a batch.
type BatchResult struct {
	Result *ChatCompletionResult
	Err    error
}

// CreateChatCompletion forwards params.Request unchanged through the proxy.
// Per-call metadata is sent as call-scoped headers; the proxy merges it with
// the global metadata. Provider errors are returned as the SDK produced them.
func (c *Client) CreateChatCompletion(ctx context.Context, params ChatCompletionParams) (*ChatCompletionResult, error) {
	cfg, client := c.snapshot()

	res, err := c.chat.SendCompletion(ctx, client, params.Request, headers.Encode(params.Metadata))
	if err != nil {
		return nil, err
	}

	if res.Metadata != nil {
		c.record(ctx, usage.RecordParams{
			RequestID: res.Completion.ID,
			Provider:  cfg.Provider,
			Operation: "chat.completions",
			Model:     string(params.Request.Model),
			Metadata:  mergedMetadata(cfg.Metadata, params.Metadata),
			Response:  *res.Metadata,
			Latency:   res.Latency,
		})
	}

	return &ChatCompletionResult{Response: res.Completion, Metadata: res.Metadata}, nil
}

// CreateChatCompletionBatch runs every call concurrently, at most limit at a
// time, and waits for all of them. Results keep the order of params and one
// failure does not cancel the others.
func (c *Client) CreateChatCompletionBatch(ctx context.Context, params []ChatCompletionParams, limit int) []BatchResult {
	if limit <= 0 {
		limit = defaultBatchLimit
	}

	results := make([]BatchResult, len(params))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, p := range params {
		g.Go(func() error {
			res, err := c.CreateChatCompletion(ctx, p)
			results[i] = BatchResult{Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func mergedMetadata(global, call models.Metadata) models.Metadata {
	out := global.Defined()
	for k, v := range call.Defined() {
		out[k] = v
	}
	return out
}
