package health

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenlay/tokenlay-go/internal/models"
)

func newProxy(t *testing.T, status int, gotAuth chan<- string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" || r.Method != http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if gotAuth != nil {
			gotAuth <- r.Header.Get("Authorization")
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckOK(t *testing.T) {
	auth := make(chan string, 1)
	srv := newProxy(t, http.StatusOK, auth)

	res := NewChecker(srv.URL+"/", "tl-key", time.Second).Check(context.Background())
	assert.Equal(t, models.HealthResult{Status: models.HealthStatusOK}, res)
	assert.True(t, res.OK())
	assert.Equal(t, "Bearer tl-key", <-auth)
}

func TestCheckAnyTwoHundred(t *testing.T) {
	srv := newProxy(t, http.StatusNoContent, nil)

	res := NewChecker(srv.URL, "k", time.Second).Check(context.Background())
	assert.True(t, res.OK())
}

func TestCheckUnauthorized(t *testing.T) {
	srv := newProxy(t, http.StatusUnauthorized, nil)

	res := NewChecker(srv.URL, "bad", time.Second).Check(context.Background())
	assert.Equal(t, models.HealthResult{Status: models.HealthStatusError, Message: "HTTP 401: Unauthorized"}, res)
}

func TestCheckConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	res := NewChecker("http://"+addr, "k", time.Second).Check(context.Background())
	assert.Equal(t, models.HealthStatusError, res.Status)
	assert.NotEmpty(t, res.Message)
}

func TestCheckCancelledContext(t *testing.T) {
	srv := newProxy(t, http.StatusOK, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewChecker(srv.URL, "k", time.Second).Check(ctx)
	assert.Equal(t, models.HealthStatusError, res.Status)
	assert.Equal(t, context.Canceled.Error(), res.Message)
}

func TestCheckerURL(t *testing.T) {
	assert.Equal(t, "https://api.tokenlay.com/health", NewChecker("https://api.tokenlay.com/", "k", time.Second).URL())
}
