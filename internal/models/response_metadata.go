package models

// RuleAction is the proxy's policy decision for a request.
type RuleAction string

const (
	RuleActionAllow RuleAction = "allow"
	RuleActionBlock RuleAction = "block"
	RuleActionWarn  RuleAction = "warn"
	RuleActionQueue RuleAction = "queue"
)

// Valid reports whether a is one of the known actions.
func (a RuleAction) Valid() bool {
	switch a {
	case RuleActionAllow, RuleActionBlock, RuleActionWarn, RuleActionQueue:
		return true
	default:
		return false
	}
}

// ResponseMetadata is what the proxy reports about a forwarded call.
type ResponseMetadata struct {
	RuleID        string     `json:"rule_id,omitzero"`
	RuleAction    RuleAction `json:"rule_action"`
	LimitExceeded bool       `json:"limit_exceeded"`
	Cost          float64    `json:"cost"`
	TokensUsed    int        `json:"tokens_used"`
	InputTokens   int        `json:"input_tokens"`
	OutputTokens  int        `json:"output_tokens"`
	DurationMs    int64      `json:"duration_ms"`
	Warnings      []string   `json:"warnings,omitzero"`
}

// DefaultResponseMetadata returns the record used when the proxy sent no headers.
func DefaultResponseMetadata() ResponseMetadata {
	return ResponseMetadata{RuleAction: RuleActionAllow}
}

// Blocked reports whether the proxy refused or deferred the call.
func (m ResponseMetadata) Blocked() bool {
	return m.RuleAction == RuleActionBlock || m.RuleAction == RuleActionQueue
}
