package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"agenda-cli/internal/activity"
	"agenda-cli/internal/logx"
	"agenda-cli/internal/model"
)

const (
	PathCategories = "/api/tipos-actividad"
	PathActivities = "/api/actividades"
	PathDetail     = "/api/actividades/detalle/"
)

// DaysPath is the program listing of one event.
func DaysPath(eventID string) string {
	return "/api/eventos/" + url.PathEscape(eventID) + "/actividades"
}

// StatusError is a non-2xx answer from the admin API.
type StatusError struct {
	Method string
	Path   string
	Code   int
	// Message is the server's "error" field when it sent one.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Client talks to the admin REST API. It never retries.
type Client struct {
	base  string
	token string
	http  *http.Client
	log   logx.Logger
}

func New(baseURL, token string, timeout time.Duration, log logx.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q: expected http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:  strings.TrimRight(u.String(), "/"),
		token: strings.TrimSpace(token),
		http:  &http.Client{Timeout: timeout},
		log:   log.With(logx.String("comp", "api")),
	}, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]model.CategoryOption, error) {
	var out []model.CategoryOption
	if err := c.do(ctx, http.MethodGet, PathCategories, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateActivityDetail(ctx context.Context, records []activity.CreateRecord) (model.ActivityDetail, error) {
	var out model.ActivityDetail
	err := c.do(ctx, http.MethodPost, PathActivities, records, &out)
	return out, err
}

func (c *Client) UpdateActivityDetail(ctx context.Context, records []activity.UpdateRecord) (model.ActivityDetail, error) {
	var out model.ActivityDetail
	err := c.do(ctx, http.MethodPut, PathActivities, records, &out)
	return out, err
}

func (c *Client) ListDays(ctx context.Context, eventID string) ([]model.ActivityDay, error) {
	var out []model.ActivityDay
	if err := c.do(ctx, http.MethodGet, DaysPath(eventID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetDetail(ctx context.Context, detailID string) (model.ActivityDetail, error) {
	var out model.ActivityDetail
	err := c.do(ctx, http.MethodGet, PathDetail+url.PathEscape(detailID), nil, &out)
	return out, err
}

func (c *Client) DeleteActivityDetail(ctx context.Context, detailID string) error {
	return c.do(ctx, http.MethodDelete, PathDetail+url.PathEscape(detailID), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: encode: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", logx.String("method", method), logx.String("path", path), logx.Err(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.log.Debug("request", logx.String("method", method), logx.String("path", path),
		logx.Int("status", resp.StatusCode), logx.Duration("took", time.Since(start)))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Method: method, Path: path, Code: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &e) == nil {
			se.Message = e.Error
		}
		return se
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
