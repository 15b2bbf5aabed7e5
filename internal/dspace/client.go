// Package dspace talks to the DSpace 7 REST API. Every operation performs the
// full authentication handshake; no token outlives a single call.
package dspace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const (
	xsrfCookie = "DSPACE-XSRF-COOKIE"
	xsrfHeader = "X-XSRF-TOKEN"

	DefaultBaseURL = "http://localhost:8080/server/api"
	DefaultTimeout = 30 * time.Second
)

// Config configures a Client.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Language string // metadata language, e.g. "en"
	Timeout  time.Duration // bounds one operation, all four handshake steps included

	// HTTPClient is copied per call so each handshake gets its own cookie jar.
	HTTPClient *http.Client
	Recorder   Recorder
	Logger     *slog.Logger
}

// Recorder observes finished DSpace calls. status is 0 on transport failure.
type Recorder interface {
	ObserveRequest(operation string, status int, elapsed time.Duration)
}

// Client is a DSpace REST client.
type Client struct {
	baseURL  string
	username string
	password string
	language string
	timeout  time.Duration
	http     *http.Client
	recorder Recorder
	logger   *slog.Logger
}

// New creates a client, filling unset fields with defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		language: cfg.Language,
		timeout:  cfg.Timeout,
		http:     httpClient,
		recorder: cfg.Recorder,
		logger:   logger.With("component", "dspace"),
	}
}

// Language returns the configured default metadata language.
func (c *Client) Language() string {
	return c.language
}

// call describes the step-4 request of a handshake.
type call struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
}

// session is the authenticated state produced by steps 1-3.
type session struct {
	client *http.Client
	bearer string
	xsrf   string
}

// do runs the four-step handshake and the request itself under one timeout.
// A non-2xx login is returned as the Result; only transport failures are errors.
func (c *Client) do(ctx context.Context, req call) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	res, err := c.handshake(ctx, req)
	if c.recorder != nil {
		status := 0
		if res != nil {
			status = res.Status
		}
		c.recorder.ObserveRequest(req.op, status, time.Since(start))
	}
	if err != nil {
		c.logger.Error("dspace request failed", "op", req.op, "error", err)
		return nil, fmt.Errorf("dspace %s: %w", req.op, err)
	}
	c.logger.Debug("dspace request", "op", req.op, "status", res.Status)
	return res, nil
}

func (c *Client) handshake(ctx context.Context, req call) (*Result, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client := *c.http
	client.Jar = jar
	s := &session{client: &client}

	// 1. anonymous status check yields the first XSRF token
	resp, err := s.send(ctx, http.MethodGet, c.baseURL+"/authn/status", nil, "", false)
	if err != nil {
		return nil, fmt.Errorf("authn status: %w", err)
	}
	discard(resp)
	s.xsrf = cookieValue(resp, xsrfCookie)
	if s.xsrf == "" {
		return nil, fmt.Errorf("authn status: no %s cookie", xsrfCookie)
	}

	// 2. credentialed login yields the bearer token and a fresh XSRF token
	form := url.Values{"user": {c.username}, "password": {c.password}}
	resp, err = s.send(ctx, http.MethodPost, c.baseURL+"/authn/login",
		[]byte(form.Encode()), "application/x-www-form-urlencoded", false)
	if err != nil {
		return nil, fmt.Errorf("authn login: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readResult(resp)
	}
	discard(resp)
	s.bearer = resp.Header.Get("Authorization")
	s.rotate(resp)

	// 3. priming request against the target rotates the XSRF token again
	target := c.baseURL + req.path
	resp, err = s.send(ctx, http.MethodPatch, target, []byte("{}"), "application/json", false)
	if err != nil {
		return nil, fmt.Errorf("prime %s: %w", req.path, err)
	}
	discard(resp)
	s.rotate(resp)

	// 4. the real request
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}
	resp, err = s.send(ctx, req.method, target, req.body, req.contentType, true)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	return readResult(resp)
}

func (s *session) send(ctx context.Context, method, target string, body []byte, contentType string, authorized bool) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.xsrf != "" {
		req.Header.Set(xsrfHeader, s.xsrf)
	}
	if authorized && s.bearer != "" {
		req.Header.Set("Authorization", s.bearer)
	}
	return s.client.Do(req)
}

// rotate keeps the previous token when the response did not set a new one.
func (s *session) rotate(resp *http.Response) {
	if token := cookieValue(resp, xsrfCookie); token != "" {
		s.xsrf = token
	}
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func readResult(resp *http.Response) (*Result, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Result{Status: resp.StatusCode, Body: body}, nil
}
