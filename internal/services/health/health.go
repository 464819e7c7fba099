// Package health probes the proxy's status endpoint.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/tokenlay/tokenlay-go/internal/models"
	"github.com/tokenlay/tokenlay-go/internal/utils"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/valyala/fasthttp"
)

// Path is the proxy's status endpoint, relative to the proxy base URL.
const Path = "/health"

// Checker issues health probes against one proxy.
type Checker struct {
	client  *fasthttp.Client
	url     string
	token   string
	timeout time.Duration
}

// NewChecker creates a checker for proxyBaseURL authenticating with token.
func NewChecker(proxyBaseURL, token string, timeout time.Duration) *Checker {
	return &Checker{
		client: &fasthttp.Client{
			Name:                "tokenlay-go",
			MaxIdleConnDuration: 30 * time.Second,
		},
		url:     utils.JoinPath(proxyBaseURL, Path),
		token:   token,
		timeout: timeout,
	}
}

// URL returns the endpoint the checker probes.
func (c *Checker) URL() string {
	return c.url
}

// Check performs one GET. It never fails: every outcome is a HealthResult.
// ctx is only consulted before the request is sent; an in-flight probe runs
// until its deadline. The request goes straight to the proxy host without
// honoring HTTP_PROXY/HTTPS_PROXY.
func (c *Checker) Check(ctx context.Context) models.HealthResult {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+c.token)

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := ctx.Err(); err != nil {
		return errorResult(err.Error())
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		fiberlog.Warnf("[tokenlay] Health check against %s failed: %v", c.url, err)
		return errorResult(err.Error())
	}

	code := resp.StatusCode()
	if code < fasthttp.StatusOK || code >= fasthttp.StatusMultipleChoices {
		fiberlog.Warnf("[tokenlay] Health check against %s returned %d", c.url, code)
		return errorResult(fmt.Sprintf("HTTP %d: %s", code, fasthttp.StatusMessage(code)))
	}

	return models.HealthResult{Status: models.HealthStatusOK}
}

func errorResult(message string) models.HealthResult {
	return models.HealthResult{Status: models.HealthStatusError, Message: message}
}
