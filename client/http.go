package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"DocLedger/internal/api"
)

// RejectedError is a refusal reported by the node.
type RejectedError struct {
	Status  int    // Status is the HTTP status code
	Code    string // Code is the stable reason code
	Message string // Message is the node's description
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("rejected (%s): %s", e.Code, e.Message)
}

// IsRejected reports whether err is a node refusal with the given code.
func IsRejected(err error, code string) bool {
	var rej *RejectedError
	return errors.As(err, &rej) && rej.Code == code
}

// getJSON performs a GET request and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, path string, result any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, result)
}

// postJSON performs a POST request with a JSON body and decodes the JSON response.
func (c *Client) postJSON(ctx context.Context, path string, body, result any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, result)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, result any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body:\n%w", err)
		}
		r = bytes.NewReader(data)
	}

	resp, err := c.send(ctx, method, path, r)
	if err != nil {
		return err
	}
	defer func() { io.Copy(io.Discard, resp.Body); resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%s %s: decode response:\n%w", method, path, err)
	}

	return nil
}

// send issues a request and turns error statuses into a RejectedError.
// On success the caller owns the response body.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request:\n%w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s:\n%w", method, path, err)
	}

	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}

	defer func() { io.Copy(io.Discard, resp.Body); resp.Body.Close() }()

	var e api.ErrorJSON
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e); err != nil || e.Code == "" {
		return nil, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	return nil, &RejectedError{Status: resp.StatusCode, Code: e.Code, Message: e.Error}
}
