// Package headers translates between metadata maps and the proxy's
// x-tokenlay-* header namespace.
package headers

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/tokenlay/tokenlay-go/internal/models"
)

// Prefix namespaces every header the proxy reads or writes.
const Prefix = "x-tokenlay-"

// Control headers, always sent.
const (
	ProviderKey  = Prefix + "provider-key"
	ProviderBase = Prefix + "provider-base"
)

// Response headers written by the proxy.
const (
	RuleID        = Prefix + "rule-id"
	RuleAction    = Prefix + "rule-action"
	LimitExceeded = Prefix + "limit-exceeded"
	Cost          = Prefix + "cost"
	TokensUsed    = Prefix + "tokens-used"
	InputTokens   = Prefix + "input-tokens"
	OutputTokens  = Prefix + "output-tokens"
	Duration      = Prefix + "duration"
	Warnings      = Prefix + "warnings"
)

// Encode maps each defined metadata entry to Prefix+key under its canonical
// header name. Keys that differ only in case collapse to one header and the
// spelling that sorts last wins.
func Encode(metadata models.Metadata) map[string]string {
	out := make(map[string]string, len(metadata))
	for _, key := range slices.Sorted(maps.Keys(metadata)) {
		value := metadata[key]
		if value == "" {
			continue
		}
		out[http.CanonicalHeaderKey(Prefix+key)] = value
	}
	return out
}

// Merge combines header groups left to right under canonical names; later
// groups win on collision, whatever the case of the name. Within one group
// names that differ only in case resolve in sorted order.
func Merge(groups ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, group := range groups {
		for _, key := range slices.Sorted(maps.Keys(group)) {
			out[http.CanonicalHeaderKey(key)] = group[key]
		}
	}
	return out
}

// Control returns the headers that tell the proxy where and as whom to forward.
func Control(providerKey, providerBase string) map[string]string {
	return map[string]string{
		ProviderKey:  providerKey,
		ProviderBase: providerBase,
	}
}

// Decode reads the proxy's response headers. Missing headers take their
// defaults; present but unparsable headers fail the whole decode.
func Decode(h http.Header) (models.ResponseMetadata, error) {
	meta := models.DefaultResponseMetadata()
	if h == nil {
		return meta, nil
	}

	meta.RuleID = h.Get(RuleID)

	if raw := h.Get(RuleAction); raw != "" {
		action := models.RuleAction(raw)
		if !action.Valid() {
			return meta, models.NewMalformedMetadataError(RuleAction, fmt.Errorf("unknown rule action %q", raw))
		}
		meta.RuleAction = action
	}

	meta.LimitExceeded = h.Get(LimitExceeded) == "true"

	if raw := h.Get(Cost); raw != "" {
		cost, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return meta, models.NewMalformedMetadataError(Cost, err)
		}
		if cost < 0 {
			return meta, models.NewMalformedMetadataError(Cost, fmt.Errorf("negative value %q", raw))
		}
		meta.Cost = cost
	}

	counts := []struct {
		header string
		dst    *int
	}{
		{TokensUsed, &meta.TokensUsed},
		{InputTokens, &meta.InputTokens},
		{OutputTokens, &meta.OutputTokens},
	}
	for _, c := range counts {
		n, err := parseCount(h, c.header)
		if err != nil {
			return meta, err
		}
		*c.dst = int(n)
	}

	duration, err := parseCount(h, Duration)
	if err != nil {
		return meta, err
	}
	meta.DurationMs = duration

	if raw := h.Get(Warnings); raw != "" {
		var warnings []string
		if err := json.Unmarshal([]byte(raw), &warnings); err != nil {
			return meta, models.NewMalformedMetadataError(Warnings, err)
		}
		meta.Warnings = warnings
	}

	return meta, nil
}

// Collect returns every namespaced header with the prefix stripped and the
// remaining name lower-cased.
func Collect(h http.Header) map[string]string {
	out := make(map[string]string)
	for name, values := range h {
		lower := strings.ToLower(name)
		if !strings.HasPrefix(lower, Prefix) || len(values) == 0 {
			continue
		}
		out[strings.TrimPrefix(lower, Prefix)] = values[0]
	}
	return out
}

// ToHTTPHeader converts a flat header map for SDKs that take http.Header.
func ToHTTPHeader(m map[string]string) http.Header {
	out := make(http.Header, len(m))
	for key, value := range m {
		out.Set(key, value)
	}
	return out
}

func parseCount(h http.Header, header string) (int64, error) {
	raw := h.Get(header)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, models.NewMalformedMetadataError(header, err)
	}
	if n < 0 {
		return 0, models.NewMalformedMetadataError(header, fmt.Errorf("negative value %q", raw))
	}
	return n, nil
}

// Defaults returns the headers baked into every SDK client built from cfg:
// control headers, then encoded global metadata, then static extra headers.
func Defaults(cfg models.ClientConfig) map[string]string {
	return Merge(Control(cfg.ProviderAPIKey, cfg.ProviderBaseURL), Encode(cfg.Metadata), cfg.Headers)
}
