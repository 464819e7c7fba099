package tokenlay

import "github.com/tokenlay/tokenlay-go/internal/models"

type (
	Config           = models.ClientConfig
	Metadata         = models.Metadata
	ProviderName     = models.ProviderName
	ResponseMetadata = models.ResponseMetadata
	RuleAction       = models.RuleAction
	HealthResult     = models.HealthResult
	HealthStatus     = models.HealthStatus
	DatabaseConfig   = models.DatabaseConfig
	DatabaseType     = models.DatabaseType
	CallRecord       = models.CallRecord
	AppError         = models.AppError
)

const (
	ProviderOpenAI    = models.ProviderOpenAI
	ProviderAnthropic = models.ProviderAnthropic
	ProviderGemini    = models.ProviderGemini

	RuleActionAllow = models.RuleActionAllow
	RuleActionBlock = models.RuleActionBlock
	RuleActionWarn  = models.RuleActionWarn
	RuleActionQueue = models.RuleActionQueue

	HealthStatusOK    = models.HealthStatusOK
	HealthStatusError = models.HealthStatusError
)

var (
	ErrMissingCredential         = models.ErrMissingCredential
	ErrMalformedResponseMetadata = models.ErrMalformedResponseMetadata
)

// Result pairs a provider response with the proxy's metadata about it. The
// provider's response object is returned untouched.
type Result[T any] struct {
	Response *T
	Metadata *ResponseMetadata
}

// TokenlayMetadata returns the proxy metadata, false when the response
// carried no identifier.
func (r *Result[T]) TokenlayMetadata() (ResponseMetadata, bool) {
	if r == nil || r.Metadata == nil {
		return ResponseMetadata{}, false
	}
	return *r.Metadata, true
}

// GetMetadata is the function form of Result.TokenlayMetadata.
func GetMetadata[T any](r *Result[T]) (ResponseMetadata, bool) {
	return r.TokenlayMetadata()
}
