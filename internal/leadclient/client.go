// Package leadclient sends lead forms to the lead intake API.
package leadclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sony/gobreaker"
	"github.com/superabroad/lead-intake/internal/config"
	"github.com/superabroad/lead-intake/internal/logging"
	"github.com/superabroad/lead-intake/internal/models"
	"github.com/superabroad/lead-intake/internal/submission"
	"github.com/superabroad/lead-intake/internal/utils"
	"github.com/superabroad/lead-intake/internal/utils/httpclient"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// LeadsPath is the lead intake endpoint relative to the backend origin
const LeadsPath = "/api/leads"

const maxResponseBytes = 1 << 20

var errMalformedResponse = errors.New("malformed lead response")

// Options configures a Client
type Options struct {
	BaseURL            string
	Timeout            time.Duration
	RateLimit          float64
	RateBurst          int
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

// Client posts leads to the intake API. It throttles outbound submissions and
// stops calling an endpoint that keeps failing until the breaker half-opens.
type Client struct {
	endpoint string
	pool     *httpclient.Pool
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	logger   *zap.Logger
}

// NewFromConfig builds a client from the environment-driven client config
func NewFromConfig(cfg *config.ClientConfig) (*Client, error) {
	return New(Options{
		BaseURL:            cfg.BackendURL,
		Timeout:            cfg.RequestTimeout,
		RateLimit:          cfg.RateLimit,
		RateBurst:          cfg.RateBurst,
		BreakerMaxFailures: cfg.BreakerMaxFailures,
		BreakerOpenTimeout: cfg.BreakerOpenTimeout,
	})
}

// New creates a client for the backend at opts.BaseURL
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("leadclient: base URL is required")
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 1
	}
	if opts.RateBurst < 1 {
		opts.RateBurst = 1
	}
	if opts.BreakerMaxFailures == 0 {
		opts.BreakerMaxFailures = 5
	}

	logger := logging.Logger.Named("leadclient")
	maxFailures := opts.BreakerMaxFailures

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "lead-intake",
		MaxRequests: 1,
		Timeout:     opts.BreakerOpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// A lead the server refuses still proves the endpoint is healthy
			var rejected *submission.ServerRejection
			if errors.As(err, &rejected) {
				return rejected.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		endpoint: base + LeadsPath,
		pool:     httpclient.NewPool(httpclient.PoolOptions{Size: 2, Timeout: opts.Timeout, SpanPrefix: "leadclient"}),
		limiter:  rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst),
		breaker:  breaker,
		logger:   logger,
	}, nil
}

// Endpoint returns the absolute URL leads are posted to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Close releases pooled HTTP clients
func (c *Client) Close() {
	c.pool.Close()
}

// SendLead posts the full form and returns the server message on acceptance.
// Errors are *submission.ServerRejection or *submission.TransportError.
func (c *Client) SendLead(ctx context.Context, lead models.LeadForm) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &submission.TransportError{Err: fmt.Errorf("rate limiter: %w", err)}
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, lead)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", &submission.TransportError{Err: err}
		}
		return "", err
	}

	return out.(Response).Message, nil
}

func (c *Client) post(ctx context.Context, lead models.LeadForm) (Response, error) {
	requestID := ulid.Make().String()
	logger := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("email", utils.MaskEmail(lead.Email)),
	)

	payload, err := json.Marshal(lead)
	if err != nil {
		return Response{}, &submission.TransportError{Err: fmt.Errorf("encode lead: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Response{}, &submission.TransportError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	httpResp, err := c.pool.Do(req)
	if err != nil {
		logger.Warn("lead request failed", zap.Error(err))
		return Response{}, &submission.TransportError{Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return Response{}, &submission.TransportError{StatusCode: httpResp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	resp := DecodeResponse(httpResp.StatusCode, body)
	logger.Debug("lead response received",
		zap.Int("status", httpResp.StatusCode),
		zap.Int("kind", int(resp.Kind)),
		zap.Duration("latency", time.Since(start)))

	switch {
	case resp.Kind == Accepted:
		return resp, nil
	case resp.Kind == Rejected && (resp.Detail != "" || is2xx(resp.StatusCode)):
		return resp, &submission.ServerRejection{StatusCode: resp.StatusCode, Detail: resp.Detail}
	case resp.Kind == Rejected:
		return resp, &submission.TransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", http.StatusText(resp.StatusCode)),
		}
	default:
		return resp, &submission.TransportError{StatusCode: resp.StatusCode, Err: errMalformedResponse}
	}
}
