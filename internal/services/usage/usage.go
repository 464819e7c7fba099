package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tokenlay/tokenlay-go/internal/models"

	"gorm.io/gorm"
)

// Service stores one ledger row per proxied call.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) AutoMigrate() error {
	return s.db.AutoMigrate(&models.CallRecord{})
}

// RecordParams describes a finished call.
type RecordParams struct {
	RequestID string
	Provider  models.ProviderName
	Operation string
	Model     string
	Metadata  models.Metadata
	Response  models.ResponseMetadata
	Latency   time.Duration
}

// NewCallRecord flattens params into a ledger row.
func NewCallRecord(params RecordParams) (models.CallRecord, error) {
	record := models.CallRecord{
		RequestID:     params.RequestID,
		Provider:      string(params.Provider),
		Operation:     params.Operation,
		Model:         params.Model,
		RuleID:        params.Response.RuleID,
		RuleAction:    params.Response.RuleAction,
		LimitExceeded: params.Response.LimitExceeded,
		Cost:          params.Response.Cost,
		TokensTotal:   params.Response.TokensUsed,
		TokensInput:   params.Response.InputTokens,
		TokensOutput:  params.Response.OutputTokens,
		DurationMs:    params.Response.DurationMs,
		LatencyMs:     params.Latency.Milliseconds(),
	}

	if len(params.Response.Warnings) > 0 {
		warnings, err := json.Marshal(params.Response.Warnings)
		if err != nil {
			return record, fmt.Errorf("failed to encode warnings: %w", err)
		}
		record.Warnings = string(warnings)
	}

	if len(params.Metadata) > 0 {
		metadata, err := json.Marshal(params.Metadata)
		if err != nil {
			return record, fmt.Errorf("failed to encode metadata: %w", err)
		}
		record.Metadata = string(metadata)
	}

	return record, nil
}

func (s *Service) Record(ctx context.Context, record models.CallRecord) (*models.CallRecord, error) {
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to record usage: %w", err)
	}
	return &record, nil
}

func (s *Service) ListByRequestID(ctx context.Context, requestID string) ([]models.CallRecord, error) {
	var records []models.CallRecord
	err := s.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list usage for request %s: %w", requestID, err)
	}
	return records, nil
}

func (s *Service) ListRecent(ctx context.Context, limit int) ([]models.CallRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []models.CallRecord
	err := s.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list usage: %w", err)
	}
	return records, nil
}

// Summarize aggregates every row in the ledger.
func (s *Service) Summarize(ctx context.Context) (models.UsageSummary, error) {
	var summary models.UsageSummary
	err := s.db.WithContext(ctx).
		Model(&models.CallRecord{}).
		Select(`COUNT(*) AS calls,
			COALESCE(SUM(cost), 0) AS cost,
			COALESCE(SUM(tokens_total), 0) AS tokens_total,
			COALESCE(SUM(tokens_input), 0) AS tokens_input,
			COALESCE(SUM(tokens_output), 0) AS tokens_output,
			COALESCE(SUM(CASE WHEN rule_action IN (?, ?) THEN 1 ELSE 0 END), 0) AS blocked`,
			models.RuleActionBlock, models.RuleActionQueue).
		Scan(&summary).Error
	if err != nil {
		return summary, fmt.Errorf("failed to summarize usage: %w", err)
	}
	return summary, nil
}
