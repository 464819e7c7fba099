package models

import "time"

// CallRecord is one ledger row per proxied call.
type CallRecord struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestID     string     `gorm:"size:255;index" json:"request_id"`
	Provider      string     `gorm:"size:32;index" json:"provider"`
	Operation     string     `gorm:"size:64" json:"operation"`
	Model         string     `gorm:"size:255;index" json:"model"`
	RuleID        string     `gorm:"size:255;default:''" json:"rule_id,omitzero"`
	RuleAction    RuleAction `gorm:"size:16;index" json:"rule_action"`
	LimitExceeded bool       `gorm:"not null;default:false" json:"limit_exceeded"`
	Cost          float64    `gorm:"not null;default:0" json:"cost"`
	TokensTotal   int        `gorm:"not null;default:0" json:"tokens_total"`
	TokensInput   int        `gorm:"not null;default:0" json:"tokens_input"`
	TokensOutput  int        `gorm:"not null;default:0" json:"tokens_output"`
	DurationMs    int64      `gorm:"not null;default:0" json:"duration_ms"`
	LatencyMs     int64      `gorm:"not null;default:0" json:"latency_ms"`
	Warnings      string     `gorm:"type:text;default:''" json:"warnings,omitzero"`
	Metadata      string     `gorm:"type:text;default:''" json:"metadata,omitzero"`
	CreatedAt     time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}

// TableName keeps the ledger table name stable across gorm naming strategies.
func (CallRecord) TableName() string {
	return "tokenlay_calls"
}

// UsageSummary aggregates ledger rows.
type UsageSummary struct {
	Calls        int64   `json:"calls"`
	Cost         float64 `json:"cost"`
	TokensTotal  int64   `json:"tokens_total"`
	TokensInput  int64   `json:"tokens_input"`
	TokensOutput int64   `json:"tokens_output"`
	Blocked      int64   `json:"blocked"`
}
