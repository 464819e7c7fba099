package headers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenlay/tokenlay-go/internal/models"
)

func TestEncode(t *testing.T) {
	t.Run("prefixes keys in canonical form", func(t *testing.T) {
		got := Encode(models.Metadata{"userId": "u-1", "feature": "chat"})
		assert.Equal(t, map[string]string{
			"X-Tokenlay-Userid":  "u-1",
			"X-Tokenlay-Feature": "chat",
		}, got)
	})

	t.Run("case variants collapse deterministically", func(t *testing.T) {
		for range 50 {
			got := Encode(models.Metadata{"Team": "upper", "team": "lower"})
			assert.Equal(t, map[string]string{"X-Tokenlay-Team": "lower"}, got)
		}
	})

	t.Run("drops absent values", func(t *testing.T) {
		got := Encode(models.Metadata{"a": "1", "b": ""})
		assert.Equal(t, map[string]string{"X-Tokenlay-A": "1"}, got)
	})

	t.Run("nil input", func(t *testing.T) {
		assert.Empty(t, Encode(nil))
	})
}

func TestMerge(t *testing.T) {
	got := Merge(map[string]string{"k": "1", "a": "x"}, nil, map[string]string{"k": "2"}, map[string]string{"b": "y"})
	assert.Equal(t, map[string]string{"K": "2", "A": "x", "B": "y"}, got)

	t.Run("later group wins across case variants", func(t *testing.T) {
		for range 50 {
			got := Merge(
				map[string]string{"x-tokenlay-provider-key": "sk-real"},
				map[string]string{"x-tokenlay-team": "from-metadata"},
				map[string]string{"X-Tokenlay-Team": "from-static", "X-TOKENLAY-PROVIDER-KEY": "sk-static"},
			)
			assert.Equal(t, map[string]string{
				"X-Tokenlay-Provider-Key": "sk-static",
				"X-Tokenlay-Team":         "from-static",
			}, got)
		}
	})

	assert.Empty(t, Merge())
	assert.Empty(t, Merge(nil, nil))
}

func TestControl(t *testing.T) {
	got := Control("sk-real", "https://api.openai.com/v1")
	assert.Equal(t, "sk-real", got["x-tokenlay-provider-key"])
	assert.Equal(t, "https://api.openai.com/v1", got["x-tokenlay-provider-base"])
}

func TestDecodeDefaults(t *testing.T) {
	for name, h := range map[string]http.Header{"empty": {}, "nil": nil} {
		t.Run(name, func(t *testing.T) {
			meta, err := Decode(h)
			require.NoError(t, err)
			assert.Equal(t, models.RuleActionAllow, meta.RuleAction)
			assert.False(t, meta.LimitExceeded)
			assert.Zero(t, meta.Cost)
			assert.Zero(t, meta.TokensUsed)
			assert.Zero(t, meta.InputTokens)
			assert.Zero(t, meta.OutputTokens)
			assert.Zero(t, meta.DurationMs)
			assert.Empty(t, meta.RuleID)
			assert.Nil(t, meta.Warnings)
		})
	}
}

func TestDecodeAllHeaders(t *testing.T) {
	h := http.Header{}
	h.Set(RuleID, "rule_42")
	h.Set(RuleAction, "warn")
	h.Set(LimitExceeded, "true")
	h.Set(Cost, "0.0125")
	h.Set(TokensUsed, "150")
	h.Set(InputTokens, "100")
	h.Set(OutputTokens, "50")
	h.Set(Duration, "842")
	h.Set(Warnings, `["budget at 90%","slow upstream"]`)

	meta, err := Decode(h)
	require.NoError(t, err)
	assert.Equal(t, models.ResponseMetadata{
		RuleID:        "rule_42",
		RuleAction:    models.RuleActionWarn,
		LimitExceeded: true,
		Cost:          0.0125,
		TokensUsed:    150,
		InputTokens:   100,
		OutputTokens:  50,
		DurationMs:    842,
		Warnings:      []string{"budget at 90%", "slow upstream"},
	}, meta)
}

func TestDecodeLimitExceededOnlyForLiteralTrue(t *testing.T) {
	for _, v := range []string{"TRUE", "1", "yes", "false"} {
		h := http.Header{}
		h.Set(LimitExceeded, v)
		meta, err := Decode(h)
		require.NoError(t, err)
		assert.False(t, meta.LimitExceeded, v)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name   string
		header string
		value  string
	}{
		{"warnings not json", Warnings, "not-json"},
		{"warnings wrong shape", Warnings, `{"a":1}`},
		{"cost not a number", Cost, "cheap"},
		{"negative cost", Cost, "-1"},
		{"tokens not an integer", TokensUsed, "1.5"},
		{"negative input tokens", InputTokens, "-3"},
		{"duration garbage", Duration, "12ms"},
		{"unknown action", RuleAction, "deny"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			h.Set(tt.header, tt.value)

			_, err := Decode(h)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrMalformedResponseMetadata))

			appErr, ok := models.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.header, appErr.Field)
		})
	}
}

func TestEncodeCollectRoundTrip(t *testing.T) {
	in := models.Metadata{"user_id": "u-7", "team": "search", "env": "prod"}

	got := Collect(ToHTTPHeader(Encode(in)))
	assert.Equal(t, map[string]string{"user_id": "u-7", "team": "search", "env": "prod"}, got)
}

func TestCollectIgnoresForeignHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("X-Tokenlay-Cost", "1")

	assert.Equal(t, map[string]string{"cost": "1"}, Collect(h))
}

func TestDefaults(t *testing.T) {
	cfg := models.ClientConfig{
		ProviderAPIKey:  "sk-real",
		ProviderBaseURL: "https://api.openai.com/v1",
		Metadata:        models.Metadata{"team": "search", "skip": ""},
		Headers:         map[string]string{"X-Static": "1", "x-tokenlay-team": "override"},
	}

	assert.Equal(t, map[string]string{
		"X-Tokenlay-Provider-Key":  "sk-real",
		"X-Tokenlay-Provider-Base": "https://api.openai.com/v1",
		"X-Tokenlay-Team":          "override",
		"X-Static":                 "1",
	}, Defaults(cfg))
}
