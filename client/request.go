package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// StatusError is returned for responses outside the 2xx range
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("received a non 2xx status response, got a %s with body %q", e.Status, e.Body)
}

func (c *Client) getResource(ctx context.Context, result interface{}, path string) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) postResource(ctx context.Context, resource interface{}, result interface{}, path string) error {
	return c.do(ctx, http.MethodPost, path, resource, result)
}

func (c *Client) removeResource(ctx context.Context, result interface{}, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, result)
}

func (c *Client) do(ctx context.Context, method, path string, reqBody, result interface{}) error {
	body, _, err := c.raw(ctx, method, path, reqBody)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, result)
}

// raw performs the request and returns the response body and headers
func (c *Client) raw(ctx context.Context, method, path string, reqBody interface{}) ([]byte, http.Header, error) {
	var rd io.Reader
	if reqBody != nil {
		body := new(bytes.Buffer)
		if err := json.NewEncoder(body).Encode(reqBody); err != nil {
			return nil, nil, err
		}
		rd = body
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Base.String()+path, rd)
	if err != nil {
		return nil, nil, err
	}
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: string(b)}
	}
	return b, resp.Header, nil
}
