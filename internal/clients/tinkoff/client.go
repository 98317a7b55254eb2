// Package tinkoff provides a client for the brokerage REST gateway.
//
// Calls are POSTs of JSON bodies to /<package>.<Service>/<Method>. All
// requests pass through a single worker that spaces them out by the
// configured rate limit, so callers never exceed the provider quota.
package tinkoff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"github.com/aristath/investsync/internal/domain"
)

const (
	// DefaultBaseURL is the production REST gateway.
	DefaultBaseURL = "https://invest-public-api.tinkoff.ru/rest"
	// SandboxBaseURL is the sandbox REST gateway.
	SandboxBaseURL = "https://sandbox-invest-public-api.tinkoff.ru/rest"

	servicePrefix    = "tinkoff.public.invest.api.contract.v1."
	trackingIDHeader = "x-tracking-id"

	defaultRateLimit = 200 * time.Millisecond
	defaultTimeout   = 30 * time.Second
	requestQueueSize = 100
	maxLoggedBody    = 500
)

var (
	errClientClosed = errors.New("client is closed")
	errQueueFull    = errors.New("request queue is full")
)

// Config holds client settings
type Config struct {
	Token     string
	BaseURL   string
	AppName   string
	Timeout   time.Duration // per-call timeout
	RateLimit time.Duration // minimum spacing between requests; negative disables
}

// requestJob is one queued call
type requestJob struct {
	ctx      context.Context
	path     string
	body     []byte
	resultCh chan requestResult
}

type requestResult struct {
	data []byte
	err  error
}

// Client talks to the REST gateway.
type Client struct {
	token        string
	baseURL      string
	appName      string
	timeout      time.Duration
	rateLimit    time.Duration
	httpClient   *http.Client
	log          zerolog.Logger
	requestQueue chan requestJob
	stopChan     chan struct{}
	workerDone   chan struct{}
	once         sync.Once
}

// NewClient creates a client and starts its request worker
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	switch {
	case cfg.RateLimit == 0:
		cfg.RateLimit = defaultRateLimit
	case cfg.RateLimit < 0:
		cfg.RateLimit = 0
	}

	c := &Client{
		token:        cfg.Token,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		appName:      cfg.AppName,
		timeout:      cfg.Timeout,
		rateLimit:    cfg.RateLimit,
		httpClient:   &http.Client{},
		log:          log.With().Str("client", "tinkoff").Logger(),
		requestQueue: make(chan requestJob, requestQueueSize),
		stopChan:     make(chan struct{}),
		workerDone:   make(chan struct{}),
	}

	go c.worker()

	return c
}

// invoke marshals req, queues the call and decodes the response into resp.
func (c *Client) invoke(ctx context.Context, service, method string, req, resp any) error {
	body, err := sonic.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	resultCh := make(chan requestResult, 1)
	job := requestJob{
		ctx:      ctx,
		path:     "/" + servicePrefix + service + "/" + method,
		body:     body,
		resultCh: resultCh,
	}

	select {
	case <-c.stopChan:
		return errClientClosed
	default:
	}

	select {
	case c.requestQueue <- job:
	case <-c.stopChan:
		return errClientClosed
	default:
		return errQueueFull
	}

	var result requestResult
	select {
	case result = <-resultCh:
	case <-ctx.Done():
		return ctx.Err()
	}
	if result.err != nil {
		return result.err
	}

	if resp == nil {
		return nil
	}
	if err := sonic.Unmarshal(result.data, resp); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	return nil
}

// worker processes requests from the queue sequentially with rate limiting
func (c *Client) worker() {
	defer close(c.workerDone)

	var lastRequestTime time.Time

	processJob := func(job requestJob) {
		if err := job.ctx.Err(); err != nil {
			job.resultCh <- requestResult{err: err}
			return
		}

		if !lastRequestTime.IsZero() {
			if elapsed := time.Since(lastRequestTime); elapsed < c.rateLimit {
				time.Sleep(c.rateLimit - elapsed)
			}
		}

		var result requestResult
		result.data, result.err = c.do(job.ctx, job.path, job.body)
		lastRequestTime = time.Now()

		job.resultCh <- result
	}

	for {
		select {
		case <-c.stopChan:
			// Drain what is already queued before exiting
			for {
				select {
				case job := <-c.requestQueue:
					processJob(job)
				default:
					return
				}
			}
		case job := <-c.requestQueue:
			processJob(job)
		}
	}
}

// Close stops the worker after the queued requests finish
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.stopChan)
		<-c.workerDone
	})
}

// do performs one HTTP call with the per-call timeout.
func (c *Client) do(ctx context.Context, path string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.appName != "" {
		req.Header.Set("x-app-name", c.appName)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		code := codeUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			code = codeDeadlineExceeded
		}
		return nil, &domain.RequestError{Code: code, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.RequestError{
			TrackingID: resp.Header.Get(trackingIDHeader),
			Code:       codeUnavailable,
			Message:    "failed to read response",
			HTTPStatus: resp.StatusCode,
			Err:        err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		reqErr := decodeError(resp, data)
		bodyStr := string(data)
		if len(bodyStr) > maxLoggedBody {
			bodyStr = bodyStr[:maxLoggedBody] + "..."
		}
		c.log.Warn().
			Str("path", path).
			Int("status_code", resp.StatusCode).
			Str("tracking_id", reqErr.TrackingID).
			Str("code", reqErr.CodeName()).
			Str("body", bodyStr).
			Msg("Provider returned error")
		return nil, reqErr
	}

	return data, nil
}
