package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	maxResponseBytes = 10 * 1024 * 1024
	defaultTimeout   = 30 * time.Second
)

// StatusError is returned for non-2xx API responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// userAgentTransport stamps every request with a fixed User-Agent; the forum
// API rejects clients that send a generic one.
type userAgentTransport struct {
	ua   string
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("User-Agent", t.ua)
	return t.base.RoundTrip(r)
}

func withUserAgent(c *http.Client, ua string) *http.Client {
	base := http.DefaultTransport
	timeout := defaultTimeout
	if c != nil {
		if c.Transport != nil {
			base = c.Transport
		}
		if c.Timeout > 0 {
			timeout = c.Timeout
		}
	}
	return &http.Client{Timeout: timeout, Transport: &userAgentTransport{ua: ua, base: base}}
}

// get performs a GET and returns the (size-limited) body of a 2xx response.
func get(ctx context.Context, client *http.Client, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
}

func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, dst any) error {
	body, err := get(ctx, client, url, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
