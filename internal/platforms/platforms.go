// Package platforms contains outbound API clients for the ad platforms the
// trafficking pipeline deploys to: CM360 (ad server of record), Meta and
// TikTok (DSP campaign creation), and Kochava (mobile attribution).
//
// Every client follows the same contract: construction never fails, a client
// missing credentials skips its calls with a log line instead of erroring,
// and real API failures surface as errors for the caller to log. The
// pipeline must keep moving tickets when a platform is down or unconfigured.
package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickwarner/openadops/internal/ratelimit"
	"go.uber.org/zap"
)

// Platform label values used for rate limiting and outbound call metrics.
const (
	PlatformCM360   = "cm360"
	PlatformMeta    = "meta"
	PlatformTikTok  = "tiktok"
	PlatformKochava = "kochava"
)

const defaultHTTPTimeout = 10 * time.Second

// allowed gates an outbound call on the shared platform limiter. A nil
// limiter means rate limiting is not wired in, so the call proceeds.
func allowed(limiter *ratelimit.PlatformLimiter, platform string) bool {
	if limiter == nil {
		return true
	}
	return limiter.Allow(platform)
}

// postJSON marshals payload, POSTs it with the given headers, and decodes
// the response body into out (skipped when out is nil). Non-2xx statuses
// return an error carrying the response body.
func postJSON(ctx context.Context, hc *http.Client, reqURL string, headers map[string]string, payload, out any, logger *zap.Logger) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return doRequest(hc, req, out, logger)
}

// postForm POSTs url-encoded form values and decodes the JSON response into
// out. The Meta Graph API takes campaign mutations as form data.
func postForm(ctx context.Context, hc *http.Client, reqURL string, values url.Values, out any, logger *zap.Logger) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return doRequest(hc, req, out, logger)
}

func doRequest(hc *http.Client, req *http.Request, out any, logger *zap.Logger) error {
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil && logger != nil {
			logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
