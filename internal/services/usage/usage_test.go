package usage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenlay/tokenlay-go/internal/models"
	"github.com/tokenlay/tokenlay-go/internal/services/database"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := database.New(models.DatabaseConfig{
		Type:         models.SQLite,
		FilePath:     filepath.Join(t.TempDir(), "usage.db"),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := NewService(db.DB)
	require.NoError(t, svc.AutoMigrate())
	return svc
}

func TestNewCallRecord(t *testing.T) {
	record, err := NewCallRecord(RecordParams{
		RequestID: "chatcmpl-1",
		Provider:  models.ProviderOpenAI,
		Operation: "chat.completions",
		Model:     "gpt-4o-mini",
		Metadata:  models.Metadata{"team": "search"},
		Response: models.ResponseMetadata{
			RuleID:       "r1",
			RuleAction:   models.RuleActionWarn,
			Cost:         0.02,
			TokensUsed:   30,
			InputTokens:  20,
			OutputTokens: 10,
			DurationMs:   120,
			Warnings:     []string{"near budget"},
		},
		Latency: 250 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, "openai", record.Provider)
	assert.Equal(t, int64(250), record.LatencyMs)
	assert.Equal(t, `["near budget"]`, record.Warnings)
	assert.Equal(t, `{"team":"search"}`, record.Metadata)
	assert.Equal(t, 30, record.TokensTotal)
}

func TestRecordAndSummarize(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rows := []models.CallRecord{
		{RequestID: "a", Provider: "openai", RuleAction: models.RuleActionAllow, Cost: 0.5, TokensTotal: 10, TokensInput: 6, TokensOutput: 4},
		{RequestID: "b", Provider: "openai", RuleAction: models.RuleActionBlock, Cost: 0.25, TokensTotal: 5, TokensInput: 5},
		{RequestID: "a", Provider: "anthropic", RuleAction: models.RuleActionQueue},
	}
	for _, row := range rows {
		saved, err := svc.Record(ctx, row)
		require.NoError(t, err)
		assert.NotZero(t, saved.ID)
	}

	summary, err := svc.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Calls)
	assert.InDelta(t, 0.75, summary.Cost, 1e-9)
	assert.Equal(t, int64(15), summary.TokensTotal)
	assert.Equal(t, int64(11), summary.TokensInput)
	assert.Equal(t, int64(4), summary.TokensOutput)
	assert.Equal(t, int64(2), summary.Blocked)

	byRequest, err := svc.ListByRequestID(ctx, "a")
	require.NoError(t, err)
	require.Len(t, byRequest, 2)
	assert.Equal(t, "openai", byRequest[0].Provider)
	assert.Equal(t, "anthropic", byRequest[1].Provider)

	recent, err := svc.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "anthropic", recent[0].Provider)
}

func TestSummarizeEmptyLedger(t *testing.T) {
	svc := newTestService(t)

	summary, err := svc.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.UsageSummary{}, summary)
}
