// Package authorizer calls the external transaction authorizer. The endpoint
// is a boolean oracle: a single GET whose body decides approval. Every
// transport failure collapses into a denial; retrying is the caller's problem.
package authorizer

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultTimeout = 5 * time.Second

// maxBodySize caps how much of the response is inspected for the
// approval token. The real endpoint answers with a tiny JSON payload.
const maxBodySize = 64 << 10

type Authorizer interface {
	Authorize(ctx context.Context) bool
}

type Client struct {
	url    string
	http   *http.Client
	logger *zap.Logger
}

func NewClient(url string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url: url,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: timeout,
				ForceAttemptHTTP2:   true,
			},
		},
		logger: logger,
	}
}

// Authorize issues one GET and reports approval. A 2xx response whose body
// contains "authorized" or "approved" (any casing) is an approval; anything
// else, including timeouts and transport errors, is a denial.
func (c *Client) Authorize(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		c.logger.Warn("authorizer request build failed", zap.Error(err))
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("authorizer unreachable", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.logger.Warn("authorizer response read failed", zap.Error(err))
		return false
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("authorizer denied",
			zap.Int("status", resp.StatusCode))
		return false
	}

	text := strings.ToLower(string(body))
	approved := strings.Contains(text, "authorized") || strings.Contains(text, "approved")
	if !approved {
		c.logger.Debug("authorizer denied", zap.Int("status", resp.StatusCode))
	}
	return approved
}
