package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// userAgent identifies SDK traffic in server logs.
const userAgent = "candor-authsdk/1"

// maxResponseBody caps how much of a response is read.
const maxResponseBody = 1 << 20

// call sends in (when non-nil) as JSON, with token as a bearer credential
// when non-empty, and decodes a want-status response into out. Any other
// status becomes an *APIError.
func (c *SDKClient) call(ctx context.Context, method, path, token string, in, out any, want int) error {
	resp, err := c.send(ctx, method, path, token, in)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out, want)
}

func (c *SDKClient) send(ctx context.Context, method, path, token string, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// decodeJSON closes resp after decoding it into target, or returns an
// *APIError when the status is not want.
func decodeJSON(resp *http.Response, target any, want int) error {
	defer resp.Body.Close()

	// Read body once for both error parsing and success decoding
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != want {
		if err := parseErrorResponse(resp, raw); err != nil {
			return err
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
