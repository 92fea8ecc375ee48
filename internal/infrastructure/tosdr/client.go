package tosdr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"TosdrCollector/internal/domain"
	"TosdrCollector/internal/ports"
)

const (
	DefaultBaseURL   = "https://api.tosdr.org"
	DefaultUserAgent = "TosdrCollector/1.0 (privacy points collector)"

	servicesPath = "/all-services/v1/"
	servicePath  = "/rest-service/v3/{id}.json"
	casePath     = "/case/v1/{id}.json"
)

// Re-exported so callers can classify errors without importing ports.
var (
	ErrRateLimited = ports.ErrRateLimited
	ErrMalformed   = ports.ErrMalformed
)

// StatusError is returned for non-success responses other than 429.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.Status)
}

// Options configures the API client.
type Options struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond caps the request rate; zero disables the limiter.
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client talks to the ToS;DR API.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

var _ ports.Provider = (*Client)(nil)

// NewClient wires a resty client with auth headers, timeout and rate limiter.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	httpClient := resty.New()
	if opts.HTTPClient != nil {
		httpClient = resty.NewWithClient(opts.HTTPClient)
	}
	httpClient.SetBaseURL(strings.TrimSuffix(opts.BaseURL, "/"))
	httpClient.SetHeader("User-Agent", opts.UserAgent)
	httpClient.SetHeader("Accept", "application/json")
	if opts.APIKey != "" {
		httpClient.SetHeader("Authorization", opts.APIKey)
	}
	httpClient.SetTimeout(opts.Timeout)

	if opts.RequestsPerSecond > 0 {
		limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	httpClient.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		logger.Debug("api response",
			"method", res.Request.Method,
			"url", res.Request.URL,
			"status", res.StatusCode(),
			"took", res.Time(),
		)
		return nil
	})

	return &Client{http: httpClient, logger: logger}
}

// Services fetches the master service list.
func (c *Client) Services(ctx context.Context) ([]domain.ServiceRef, error) {
	var payload envelope[serviceListPayload]
	if err := c.get(ctx, servicesPath, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Parameters == nil || payload.Parameters.Services == nil {
		return nil, fmt.Errorf("%w: service list without services", ErrMalformed)
	}

	refs := make([]domain.ServiceRef, 0, len(payload.Parameters.Services))
	for _, s := range payload.Parameters.Services {
		if s.ID == "" {
			continue
		}
		refs = append(refs, domain.ServiceRef{ID: string(s.ID)})
	}
	return refs, nil
}

// Service fetches detail data, including review points, for one service.
func (c *Client) Service(ctx context.Context, id string) (domain.Service, error) {
	var payload envelope[servicePayload]
	if err := c.get(ctx, servicePath, map[string]string{"id": id}, &payload); err != nil {
		return domain.Service{}, err
	}
	if payload.Parameters == nil {
		return domain.Service{}, fmt.Errorf("%w: service %s without parameters", ErrMalformed, id)
	}
	p := payload.Parameters

	service := domain.Service{
		ID:     id,
		URL:    strings.TrimSpace(p.URL),
		Rating: domain.RatingUnknown,
		Points: make([]domain.Point, 0, len(p.Points)),
	}
	if mask, err := parseInt(p.Rating); err == nil {
		service.Rating = domain.RatingFromBitmask(mask)
	}
	for _, u := range p.URLs {
		if u = strings.TrimSpace(u); u != "" {
			service.RelatedURLs = append(service.RelatedURLs, u)
		}
	}
	for _, pt := range p.Points {
		caseID := string(pt.CaseID)
		if caseID == "0" {
			caseID = ""
		}
		service.Points = append(service.Points, domain.Point{Status: pt.Status, CaseID: caseID})
	}
	return service, nil
}

// Case fetches one case. The returned title is lower-cased.
func (c *Client) Case(ctx context.Context, id string) (domain.Case, error) {
	var payload envelope[casePayload]
	if err := c.get(ctx, casePath, map[string]string{"id": id}, &payload); err != nil {
		return domain.Case{}, err
	}
	if payload.Parameters == nil || payload.Parameters.Title == nil {
		return domain.Case{}, fmt.Errorf("%w: case %s without title", ErrMalformed, id)
	}
	p := payload.Parameters

	score, err := parseInt(p.Score)
	if err != nil {
		return domain.Case{}, fmt.Errorf("%w: case %s score: %v", ErrMalformed, id, err)
	}

	return domain.Case{
		ID:             id,
		Title:          strings.ToLower(*p.Title),
		Classification: domain.Classification(p.Classification),
		Score:          score,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, v any) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParams(params).
		Get(path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("request %s: %w", path, err)
	}

	switch status := res.StatusCode(); {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", res.Request.URL, ErrRateLimited)
	case status != http.StatusOK:
		return &StatusError{URL: res.Request.URL, Status: status}
	}

	if err := json.Unmarshal(res.Body(), v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrMalformed, res.Request.URL, err)
	}
	return nil
}
