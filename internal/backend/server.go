/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package backend serves the dashboard commands over HTTP and provides a
// client for them. Routes under /api, except token issuance, require a
// bearer token signed with the server secret.
package backend

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"gridboard/internal/dashboard"
	"gridboard/internal/export"
	"gridboard/internal/layoutstore"
	applog "gridboard/internal/log"
	"gridboard/internal/storage"
	"gridboard/internal/version"
)

// Config holds server configuration.
type Config struct {
	Addr string // http bind address, e.g. "127.0.0.1:8787"
	// Secret signs bearer tokens. When set, token requests must present it.
	// When empty a random secret is generated and tokens are issued freely.
	Secret string
}

// Server exposes one Manager. Commands are serialized.
type Server struct {
	mu     sync.Mutex
	m      *dashboard.Manager
	ready  storage.Pinger
	secret string
	open   bool
	addr   string
	log    *slog.Logger
}

// NewServer wraps m. ready may be nil, in which case /readyz always succeeds.
func NewServer(m *dashboard.Manager, cfg Config, ready storage.Pinger) *Server {
	s := &Server{
		m:      m,
		ready:  ready,
		secret: cfg.Secret,
		addr:   cfg.Addr,
		log:    applog.WithComponent("backend"),
	}
	if s.addr == "" {
		s.addr = "127.0.0.1:8787"
	}
	if s.secret == "" {
		buf := make([]byte, 32)
		_, _ = rand.Read(buf)
		s.secret = hex.EncodeToString(buf)
		s.open = true
		s.log.Warn("server secret not set; issuing tokens without credentials")
	}
	return s
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(version.String()))
	})
	mux.HandleFunc("POST /api/auth/token", s.handleToken)

	mux.HandleFunc("GET /api/dashboard", s.auth(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		v := s.m.View()
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, v)
	}))
	mux.HandleFunc("GET /api/cards", s.auth(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		cards := s.m.Cards()
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, cards)
	}))
	mux.HandleFunc("GET /api/cards/{id}", s.auth(s.handleCard))
	mux.HandleFunc("POST /api/viewport", s.auth(s.handleViewport))
	mux.HandleFunc("POST /api/edit", s.auth(s.command(func(ctx context.Context, _ *http.Request) error {
		_, err := s.m.ToggleEditMode(ctx)
		return err
	})))
	mux.HandleFunc("POST /api/save", s.auth(s.command(func(ctx context.Context, _ *http.Request) error {
		return s.m.Save(ctx)
	})))
	mux.HandleFunc("POST /api/reset", s.auth(s.command(func(ctx context.Context, _ *http.Request) error {
		s.m.ResetLayout(ctx)
		return nil
	})))
	mux.HandleFunc("POST /api/intro/dismiss", s.auth(s.command(func(ctx context.Context, _ *http.Request) error {
		s.m.DismissIntro(ctx)
		return nil
	})))
	mux.HandleFunc("POST /api/undo", s.auth(s.command(func(ctx context.Context, _ *http.Request) error {
		_, err := s.m.Undo(ctx)
		return err
	})))
	mux.HandleFunc("POST /api/redo", s.auth(s.command(func(ctx context.Context, _ *http.Request) error {
		_, err := s.m.Redo(ctx)
		return err
	})))
	mux.HandleFunc("POST /api/cards/{id}/visibility", s.auth(s.command(func(ctx context.Context, r *http.Request) error {
		_, err := s.m.ToggleCardVisibility(ctx, r.PathValue("id"))
		return err
	})))
	mux.HandleFunc("POST /api/cards/{id}/move", s.auth(s.command(func(ctx context.Context, r *http.Request) error {
		var req struct{ X, Y int }
		if err := decodeBody(r, &req); err != nil {
			return err
		}
		return s.m.OnCardMove(ctx, r.PathValue("id"), req.X, req.Y)
	})))
	mux.HandleFunc("POST /api/cards/{id}/resize", s.auth(s.command(func(ctx context.Context, r *http.Request) error {
		var req struct{ W, H int }
		if err := decodeBody(r, &req); err != nil {
			return err
		}
		return s.m.OnCardResize(ctx, r.PathValue("id"), req.W, req.H)
	})))
	mux.HandleFunc("GET /api/export", s.auth(s.handleExport))
	return mux
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("shutdown", slog.Any("err", err))
		}
	}()
	s.log.Info("listening", slog.String("addr", ln.Addr().String()))
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}

// Replace swaps the served manager, e.g. after the card catalog changed.
// Requests in flight finish against the old one.
func (s *Server) Replace(m *dashboard.Manager) {
	if m == nil {
		return
	}
	s.mu.Lock()
	s.m = m
	s.mu.Unlock()
	s.log.Info("manager replaced", slog.Int("cards", len(m.Cards())))
}

// Reload builds a replacement manager with build and swaps it in. build gets
// the current viewport width and runs with commands held off, so anything the
// old manager persisted is visible to the new one.
func (s *Server) Reload(build func(width int) (*dashboard.Manager, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := build(s.m.Width())
	if err != nil {
		return err
	}
	if next == nil {
		return errors.New("reload produced no manager")
	}
	s.m = next
	s.log.Info("manager reloaded", slog.Int("cards", len(next.Cards())), slog.Int("width", next.Width()))
	return nil
}

// Manager returns the manager currently served.
func (s *Server) Manager() *dashboard.Manager {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m
}

// Token issues a bearer token directly, for hosts that share the process.
func (s *Server) Token(subject string, ttl time.Duration) (string, error) {
	return signToken(s.secret, subject, time.Now().Add(ttl))
}

func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return withAuth(s.secret, func(w http.ResponseWriter, r *http.Request, _ string) { next(w, r) })
}

// command runs fn under the manager lock and answers with the new view.
func (s *Server) command(fn func(context.Context, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := fn(r.Context(), r); err != nil {
			s.log.Debug("command rejected", slog.String("path", r.URL.Path), slog.Any("err", err))
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, s.m.View())
	}
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("storage not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	// Optional JSON body: { "subject": "name", "ttl_seconds": 3600, "secret": "..." }
	var req struct {
		Subject    string `json:"subject"`
		TTLSeconds int64  `json:"ttl_seconds"`
		Secret     string `json:"secret"`
	}
	b, _ := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	_ = r.Body.Close()
	_ = json.Unmarshal(b, &req)
	if !s.open && !hmac.Equal([]byte(req.Secret), []byte(s.secret)) {
		writeError(w, http.StatusUnauthorized, errors.New("invalid secret"))
		return
	}
	if req.Subject == "" {
		req.Subject = "anonymous"
	}
	if req.TTLSeconds <= 0 || req.TTLSeconds > 24*3600 {
		req.TTLSeconds = 3600
	}
	exp := time.Now().Add(time.Duration(req.TTLSeconds) * time.Second)
	tok, err := signToken(s.secret, req.Subject, exp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      tok,
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
}

// CardDetail is a card with its rendered content.
type CardDetail struct {
	dashboard.CardState
	MinW int    `json:"minW"`
	MinH int    `json:"minH"`
	Body string `json:"body"`
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	c, ok := s.m.Card(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %q", layoutstore.ErrUnknownCard, id))
		return
	}
	d := CardDetail{CardState: dashboard.CardState{ID: c.ID, Title: c.Title}, MinW: c.MinW, MinH: c.MinH}
	for _, cs := range s.m.Cards() {
		if cs.ID == id {
			d.Hidden = cs.Hidden
		}
	}
	if c.Content != nil {
		var sb strings.Builder
		if err := c.Content.Render(&sb); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		d.Body = sb.String()
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Width int `json:"width"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Width < 0 {
		writeError(w, http.StatusBadRequest, errors.New("width must not be negative"))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.m.OnViewportResize(r.Context(), req.Width); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.m.View())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := export.Format(strings.ToLower(r.URL.Query().Get("format")))
	if format == "" {
		format = export.FormatSVG
	}
	opt := export.Options{
		IncludeBody:   r.URL.Query().Get("body") == "1",
		IncludeHidden: r.URL.Query().Get("hidden") == "1",
	}
	s.mu.Lock()
	v := s.m.View()
	s.mu.Unlock()

	var buf bytes.Buffer
	var err error
	var ctype string
	switch format {
	case export.FormatSVG:
		ctype, err = "image/svg+xml", export.SVG(&buf, v, opt)
	case export.FormatPNG:
		ctype, err = "image/png", export.PNG(&buf, v, opt)
	case export.FormatPDF:
		ctype, err = "application/pdf", export.PDF(&buf, v, opt)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported export format %q", format))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", ctype)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

var errBadRequest = errors.New("bad request")

func decodeBody(r *http.Request, dest any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, layoutstore.ErrUnknownCard), errors.Is(err, layoutstore.ErrUnknownBreakpoint):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrNotEditing), errors.Is(err, dashboard.ErrSimplified):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
