// Package abc is the client for the Academic Bank of Credits API (in
// this deployment, the simulator under cmd/abcsim). The bank returns a
// deterministic token for identical payloads, so a replayed push is
// idempotent on the far side.
package abc

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

	"github.com/praktiki/internship-credit-portal/internal/core/ports"
	"github.com/praktiki/internship-credit-portal/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	mode       string
	httpClient *http.Client
	executor   *resilience.Executor
}

// New builds the bank client. mode is the simulator's outcome switch
// (success, pending, error) and is ignored by a real bank.
func New(baseURL, mode string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		mode:       mode,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		executor:   executor,
	}
}

func (c *Client) Push(ctx context.Context, push ports.CreditPush) (*ports.CreditPushResult, error) {
	endpoint := c.baseURL + "/api/v2/credits/upload"
	if c.mode != "" {
		endpoint += "?mode=" + url.QueryEscape(c.mode)
	}

	var result ports.CreditPushResult
	err := c.call(ctx, "push", func(callCtx context.Context) error {
		return c.postJSON(callCtx, endpoint, push, &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Status(ctx context.Context, token string) (string, error) {
	endpoint := c.baseURL + "/api/v2/credits/status/" + url.PathEscape(token)

	var response struct {
		Token  string `json:"abc_token"`
		Status string `json:"status"`
	}
	err := c.call(ctx, "status", func(callCtx context.Context) error {
		return c.getJSON(callCtx, endpoint, &response)
	})
	if err != nil {
		return "", err
	}
	return response.Status, nil
}

func (c *Client) call(ctx context.Context, operation string, fn func(context.Context) error) error {
	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "abc."+operation, fn, classifyABCError)
	} else {
		err = fn(ctx)
	}
	return wrapTemporaryIfNeeded("abc "+operation, err)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create status request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("abc request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode abc response: %w", err)
	}
	return nil
}
