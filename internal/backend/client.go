/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

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

	"gridboard/internal/dashboard"
)

// Client is a minimal HTTP client for the dashboard API.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a new backend client. baseURL may include a trailing slash; it will be normalized.
func NewClient(baseURL string, token string) *Client {
	b := strings.TrimRight(baseURL, "/")
	return &Client{
		BaseURL: b,
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// APIError is a non-2xx answer.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server: %s", http.StatusText(e.Status))
	}
	return fmt.Sprintf("server: %s: %s", http.StatusText(e.Status), e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return nil, err
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		apiErr := &APIError{Status: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(b))
		}
		return nil, apiErr
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// Login requests a token and stores it on the client.
func (c *Client) Login(ctx context.Context, subject, secret string, ttl time.Duration) error {
	req := map[string]any{"subject": subject, "secret": secret, "ttl_seconds": int64(ttl / time.Second)}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/token", req, &out); err != nil {
		return err
	}
	c.Token = out.Token
	return nil
}

// Dashboard returns the current view.
func (c *Client) Dashboard(ctx context.Context) (dashboard.View, error) {
	var v dashboard.View
	err := c.doJSON(ctx, http.MethodGet, "/api/dashboard", nil, &v)
	return v, err
}

// Cards lists every card with its hidden flag.
func (c *Client) Cards(ctx context.Context) ([]dashboard.CardState, error) {
	var list []dashboard.CardState
	if err := c.doJSON(ctx, http.MethodGet, "/api/cards", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Card returns one card with its rendered body.
func (c *Client) Card(ctx context.Context, id string) (CardDetail, error) {
	var d CardDetail
	err := c.doJSON(ctx, http.MethodGet, "/api/cards/"+url.PathEscape(id), nil, &d)
	return d, err
}

func (c *Client) post(ctx context.Context, path string, body any) (dashboard.View, error) {
	var v dashboard.View
	err := c.doJSON(ctx, http.MethodPost, path, body, &v)
	return v, err
}

func (c *Client) Viewport(ctx context.Context, width int) (dashboard.View, error) {
	return c.post(ctx, "/api/viewport", map[string]int{"width": width})
}

func (c *Client) ToggleEdit(ctx context.Context) (dashboard.View, error) {
	return c.post(ctx, "/api/edit", nil)
}

func (c *Client) Save(ctx context.Context) (dashboard.View, error) {
	return c.post(ctx, "/api/save", nil)
}

func (c *Client) Reset(ctx context.Context) (dashboard.View, error) {
	return c.post(ctx, "/api/reset", nil)
}

func (c *Client) DismissIntro(ctx context.Context) (dashboard.View, error) {
	return c.post(ctx, "/api/intro/dismiss", nil)
}

func (c *Client) Undo(ctx context.Context) (dashboard.View, error) {
	return c.post(ctx, "/api/undo", nil)
}

func (c *Client) Redo(ctx context.Context) (dashboard.View, error) {
	return c.post(ctx, "/api/redo", nil)
}

func (c *Client) ToggleVisibility(ctx context.Context, id string) (dashboard.View, error) {
	return c.post(ctx, "/api/cards/"+url.PathEscape(id)+"/visibility", nil)
}

func (c *Client) Move(ctx context.Context, id string, x, y int) (dashboard.View, error) {
	return c.post(ctx, "/api/cards/"+url.PathEscape(id)+"/move", map[string]int{"x": x, "y": y})
}

func (c *Client) Resize(ctx context.Context, id string, w, h int) (dashboard.View, error) {
	return c.post(ctx, "/api/cards/"+url.PathEscape(id)+"/resize", map[string]int{"w": w, "h": h})
}

// Export fetches the current view rendered as svg, png or pdf.
func (c *Client) Export(ctx context.Context, format string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/export?format="+url.QueryEscape(format), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
