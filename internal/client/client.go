// Package client talks to the sheetdesk HTTP API and keeps a local
// projection of the catalog in step with it.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/govalyteams/sheetdesk/internal/core/domain"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultRetryCount = 3
	defaultRetryWait  = 100 * time.Millisecond
)

// Options configures a Client. Zero values pick defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
	Logger     zerolog.Logger
	// HTTPClient overrides the transport, typically in tests.
	HTTPClient *http.Client
}

// Client is a typed wrapper around the HTTP API. Requests are retried only
// when the server is unavailable; creations carry an Idempotency-Key that
// stays the same across retries.
type Client struct {
	http   *resty.Client
	log    zerolog.Logger
	newKey func() string
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RetryCount < 0 {
		opts.RetryCount = 0
	} else if opts.RetryCount == 0 {
		opts.RetryCount = defaultRetryCount
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = defaultRetryWait
	}

	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(20 * opts.RetryWait).
		AddRetryCondition(retryCondition)

	return &Client{http: rc, log: opts.Logger, newKey: uuid.NewString}
}

// retryCondition retries network failures and 503s. Every other answer is
// final: a 4xx will not get better by asking again.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	if r == nil {
		return false
	}
	return r.StatusCode() == http.StatusServiceUnavailable
}

// do sends one request and decodes the result. Transport failures surface
// as domain.ErrUnavailable.
func (c *Client) do(ctx context.Context, req *resty.Request, method, path string, result any) (*resty.Response, error) {
	req.SetContext(ctx).SetError(&errorBody{})
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if ctx.Err() != nil {
			return resp, ctx.Err()
		}
		return resp, fmt.Errorf("%s %s: %w: %v", method, path, domain.ErrUnavailable, err)
	}
	if resp.IsError() {
		msg := http.StatusText(resp.StatusCode())
		if body, ok := resp.Error().(*errorBody); ok && body.Error != "" {
			msg = body.Error
		}
		c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode()).Str("error", msg).Msg("request failed")
		return resp, &APIError{Status: resp.StatusCode(), Message: msg}
	}
	return resp, nil
}

func (c *Client) authed(s *Session) *resty.Request {
	return c.http.R().SetAuthToken(s.Token())
}

type loginResponse struct {
	Token       string    `json:"token"`
	AccountID   string    `json:"accountId"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	Designation string    `json:"designation"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Login authenticates and returns an immutable Session.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var out loginResponse
	req := c.http.R().SetBody(map[string]string{"username": username, "password": password})
	if _, err := c.do(ctx, req, http.MethodPost, "/auth/login", &out); err != nil {
		return nil, err
	}
	return &Session{
		token: out.Token,
		identity: domain.Identity{
			AccountID:   out.AccountID,
			Username:    out.Username,
			Role:        domain.Role(out.Role).Tier(),
			Designation: out.Designation,
		},
		expiresAt: out.ExpiresAt,
	}, nil
}

func (c *Client) ListAccounts(ctx context.Context, s *Session) ([]*domain.Account, error) {
	var out []*domain.Account
	if _, err := c.do(ctx, c.authed(s), http.MethodGet, "/accounts", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NewAccount carries the fields of an account to create.
type NewAccount struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	Designation string `json:"designation,omitempty"`
}

func (c *Client) CreateAccount(ctx context.Context, s *Session, in NewAccount) (*domain.Account, error) {
	var out domain.Account
	req := c.authed(s).SetHeader("Idempotency-Key", c.newKey()).SetBody(in)
	if _, err := c.do(ctx, req, http.MethodPost, "/accounts", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListSheets(ctx context.Context, s *Session) ([]*domain.Sheet, error) {
	var out []*domain.Sheet
	if _, err := c.do(ctx, c.authed(s), http.MethodGet, "/sheets", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateSheet(ctx context.Context, s *Session, name, sheetURL string) (*domain.Sheet, error) {
	var out domain.Sheet
	req := c.authed(s).
		SetHeader("Idempotency-Key", c.newKey()).
		SetBody(map[string]string{"sheetName": name, "sheetUrl": sheetURL})
	if _, err := c.do(ctx, req, http.MethodPost, "/sheets", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Assignment names both ends of an edge. Set one of AccountID/Username and
// one of SheetID/SheetURL.
type Assignment struct {
	AccountID string `json:"accountId,omitempty"`
	Username  string `json:"username,omitempty"`
	SheetID   string `json:"sheetId,omitempty"`
	SheetURL  string `json:"sheetUrl,omitempty"`
}

// AssignResult is the server's echo of an assignment.
type AssignResult struct {
	Message  string        `json:"message"`
	Assigned bool          `json:"assigned"`
	Sheet    *domain.Sheet `json:"sheet"`
}

func (c *Client) AssignSheet(ctx context.Context, s *Session, in Assignment) (*AssignResult, error) {
	var out AssignResult
	if _, err := c.do(ctx, c.authed(s).SetBody(in), http.MethodPost, "/sheets/assign", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSheet removes a sheet. A 404 on a retried attempt means an earlier
// attempt went through, so it counts as success.
func (c *Client) DeleteSheet(ctx context.Context, s *Session, sheetID string) error {
	resp, err := c.do(ctx, c.authed(s), http.MethodDelete, "/sheets/"+url.PathEscape(sheetID), nil)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) && resp != nil && resp.Request != nil && resp.Request.Attempt > 1 {
			return nil
		}
		return err
	}
	return nil
}

func (c *Client) SheetsForAccount(ctx context.Context, s *Session, accountID string) ([]*domain.Sheet, error) {
	var out []*domain.Sheet
	if _, err := c.do(ctx, c.authed(s), http.MethodGet, "/sheets/account/"+url.PathEscape(accountID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MySheets lists the sheets assigned to the session's own account.
func (c *Client) MySheets(ctx context.Context, s *Session) ([]*domain.Sheet, error) {
	return c.SheetsForAccount(ctx, s, s.Identity().AccountID)
}
