/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package telemetry sends opt-in anonymous usage events about dashboard
// interactions and optional crash uploads.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	applog "gridboard/internal/log"
	"gridboard/internal/version"
)

// Config holds runtime configuration for telemetry and crash uploads.
// All telemetry is strictly opt-in and disabled by default.
//
// Environment variables (read by FromEnv):
// - GB_TELEMETRY_OPT_IN: "1", "true", "yes" to enable metrics
// - GB_TELEMETRY_URL: URL to POST JSON events to
// - GB_CRASH_UPLOAD_URL: URL to POST crash reports to
// - GB_TELEMETRY_TIMEOUT_MS: optional request timeout, default 1500ms
// - GB_TELEMETRY_DEBUG: if set, logs event send attempts
//
// If no URLs are set, events are dropped, even if opt-in is true.
type Config struct {
	OptIn        bool
	EventsURL    string
	CrashURL     string
	Timeout      time.Duration
	DebugLogging bool
	// Static props are added to every event, e.g. the storage driver.
	Static map[string]any
}

func FromEnv() Config {
	cfg := Config{
		OptIn:        parseBool(os.Getenv("GB_TELEMETRY_OPT_IN")),
		EventsURL:    strings.TrimSpace(os.Getenv("GB_TELEMETRY_URL")),
		CrashURL:     strings.TrimSpace(os.Getenv("GB_CRASH_UPLOAD_URL")),
		Timeout:      1500 * time.Millisecond,
		DebugLogging: os.Getenv("GB_TELEMETRY_DEBUG") != "",
	}
	if ms := strings.TrimSpace(os.Getenv("GB_TELEMETRY_TIMEOUT_MS")); ms != "" {
		if v, err := time.ParseDuration(ms + "ms"); err == nil {
			cfg.Timeout = v
		}
	}
	return cfg
}

func parseBool(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// Event is the JSON body posted for each usage event.
type Event struct {
	Name    string         `json:"name"`
	TS      string         `json:"ts"`
	Version string         `json:"version"`
	OS      string         `json:"os"`
	Arch    string         `json:"arch"`
	Props   map[string]any `json:"props,omitempty"`
}

// Client is a bounded async sender. It never blocks the caller and drops
// events when the queue is full or the endpoint fails.
type Client struct {
	cfg     Config
	log     *slog.Logger
	cli     *http.Client
	q       chan Event
	pending atomic.Int64
	dropped atomic.Int64
	sent    atomic.Int64
	once    sync.Once
	closed  chan struct{}
	done    chan struct{}
}

var (
	defaultClient *Client
	defaultOnce   sync.Once
)

// InitDefault initializes the package-level default client from env when first used.
func InitDefault() {
	defaultOnce.Do(func() {
		if defaultClient == nil {
			NewDefault(FromEnv())
		}
	})
}

// NewDefault creates and installs the default client with cfg.
func NewDefault(cfg Config) *Client {
	defaultClient = New(cfg)
	return defaultClient
}

// New constructs a client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 1500 * time.Millisecond
	}
	c := &Client{
		cfg:    cfg,
		log:    applog.WithComponent("telemetry"),
		cli:    &http.Client{Timeout: cfg.Timeout},
		q:      make(chan Event, 64),
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go c.loop()
	return c
}

// Enabled reports whether anonymous telemetry is enabled and an endpoint is configured.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Enabled reports whether anonymous telemetry is enabled using the default client.
func Enabled() bool {
	InitDefault()
	return defaultClient.Enabled()
}

// Event queues an event if enabled. Only scalar props are kept; strings are
// truncated so free text cannot leak.
func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	ev := Event{
		Name:    name,
		TS:      time.Now().UTC().Format(time.RFC3339Nano),
		Version: version.String(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
	merged := make(map[string]any, len(c.cfg.Static)+len(props))
	for k, v := range c.cfg.Static {
		merged[k] = v
	}
	for k, v := range props {
		merged[k] = v
	}
	for k, v := range merged {
		if sv, ok := scalar(v); ok {
			if ev.Props == nil {
				ev.Props = map[string]any{}
			}
			ev.Props[k] = sv
		}
	}
	c.pending.Add(1)
	select {
	case c.q <- ev:
	default:
		c.pending.Add(-1)
		c.dropped.Add(1)
	}
}

func scalar(v any) (any, bool) {
	switch x := v.(type) {
	case bool, int, int64, float64:
		return x, true
	case string:
		if len(x) > 64 {
			x = x[:64]
		}
		return x, true
	default:
		return nil, false
	}
}

// Track sends an event through the default client.
func Track(name string, props map[string]any) { InitDefault(); defaultClient.Event(name, props) }

// Stats reports sent and dropped event counts.
func (c *Client) Stats() (sent, dropped int64) { return c.sent.Load(), c.dropped.Load() }

// Flush waits until queued events are sent, ctx ends, or a short deadline passes.
func (c *Client) Flush(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	deadline := time.Now().Add(2 * time.Second)
	for c.pending.Load() > 0 && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// Close stops the background goroutine after the current send.
func (c *Client) Close() {
	c.once.Do(func() { close(c.closed) })
	<-c.done
}

func (c *Client) loop() {
	defer close(c.done)
	for {
		select {
		case <-c.closed:
			// Account for anything still queued so Flush does not wait on it.
			for {
				select {
				case <-c.q:
					c.dropped.Add(1)
					c.pending.Add(-1)
				default:
					return
				}
			}
		case ev := <-c.q:
			c.send(ev)
			c.pending.Add(-1)
		}
	}
}

func (c *Client) send(ev Event) {
	buf, err := json.Marshal(ev)
	if err != nil {
		c.dropped.Add(1)
		return
	}
	req, err := http.NewRequest(http.MethodPost, c.cfg.EventsURL, bytes.NewReader(buf))
	if err != nil {
		c.dropped.Add(1)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.cli.Do(req)
	if err != nil {
		c.dropped.Add(1)
		if c.cfg.DebugLogging {
			c.log.Debug("telemetry send failed", slog.String("event", ev.Name), slog.Any("err", err))
		}
		return
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 300 {
		c.dropped.Add(1)
		return
	}
	c.sent.Add(1)
	if c.cfg.DebugLogging {
		c.log.Debug("telemetry event sent", slog.String("event", ev.Name))
	}
}

// UploadCrash posts an already-serialized crash report to the configured crash URL if opt-in.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	c.pending.Add(1)
	go func(b []byte) {
		defer c.pending.Add(-1)
		req, err := http.NewRequest(http.MethodPost, c.cfg.CrashURL, bytes.NewReader(b))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
		resp, err := c.cli.Do(req)
		if err != nil {
			if c.cfg.DebugLogging {
				c.log.Debug("crash upload failed", slog.Any("err", err))
			}
			return
		}
		_ = resp.Body.Close()
		if c.cfg.DebugLogging {
			c.log.Debug("crash report uploaded")
		}
	}(append([]byte(nil), report...))
}

// UploadCrash using default client.
func UploadCrash(report []byte) { InitDefault(); defaultClient.UploadCrash(report) }
