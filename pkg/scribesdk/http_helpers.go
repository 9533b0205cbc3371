package scribesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// send issues one request. An empty bearer sends no Authorization header
// and a nil payload sends no body.
func (c *SDKClient) send(ctx context.Context, method, path, bearer string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// readResponse closes resp and turns any status other than want into an
// *APIError. With a nil target the body is discarded.
func readResponse(resp *http.Response, want int, target any) error {
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != want {
		return parseErrorResponse(resp, raw)
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func call[T any](ctx context.Context, c *SDKClient, method, path string, payload any, status int) (*T, error) {
	resp, err := c.send(ctx, method, path, "", payload)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := readResponse(resp, status, out); err != nil {
		return nil, err
	}
	return out, nil
}

// authCall is call with the session's bearer token, refreshed first when
// it has expired.
func authCall[T any](ctx context.Context, s *Session, method, path string, payload any, status int) (*T, error) {
	out := new(T)
	if err := authExec(ctx, s, method, path, payload, status, out); err != nil {
		return nil, err
	}
	return out, nil
}

func authExec(ctx context.Context, s *Session, method, path string, payload any, status int, target any) error {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return err
	}
	resp, err := s.client.send(ctx, method, path, token, payload)
	if err != nil {
		return err
	}
	return readResponse(resp, status, target)
}
