// Package remote is the authenticated HTTP session against the learning
// platform's REST and GraphQL endpoints.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// ErrBodyTooLarge means a response body exceeded the read limit.
var ErrBodyTooLarge = errors.New("response body too large")

var maxBodySize int64 = 16 << 20

// Config describes how to reach and authenticate against the platform.
type Config struct {
	BaseURL    string
	GraphQLURL string
	Cookies    map[string]string
	Headers    map[string]string
	Timeout    time.Duration
}

// Session carries cookies and default headers across requests.
type Session struct {
	client     *http.Client
	baseURL    *url.URL
	graphqlURL *url.URL
	headers    map[string]string
	logger     *zap.Logger
}

// Response is a raw platform reply.
type Response struct {
	Status int
	Body   []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// JSON parses the body for path lookups.
func (r *Response) JSON() gjson.Result {
	return gjson.ParseBytes(r.Body)
}

// Contains reports whether the raw body contains marker.
func (r *Response) Contains(marker string) bool {
	return bytes.Contains(r.Body, []byte(marker))
}

// New builds a Session with a cookie jar seeded from cfg.Cookies.
func New(cfg Config, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	gql, err := url.Parse(cfg.GraphQLURL)
	if err != nil {
		return nil, fmt.Errorf("parse graphql url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	cookies := make([]*http.Cookie, 0, len(cfg.Cookies))
	for name, value := range cfg.Cookies {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
	jar.SetCookies(base, cookies)
	if gql.Host != base.Host {
		jar.SetCookies(gql, cookies)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Session{
		client:     &http.Client{Jar: jar, Timeout: timeout},
		baseURL:    base,
		graphqlURL: gql,
		headers:    cfg.Headers,
		logger:     logger.Named("remote"),
	}, nil
}

// GetJSON issues a GET against a path relative to the base URL.
func (s *Session) GetJSON(ctx context.Context, path string, query url.Values) (*Response, error) {
	u, err := s.resolve(path, query)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return s.do(req)
}

// PostJSON posts body as JSON to a path relative to the base URL.
func (s *Session) PostJSON(ctx context.Context, path string, query url.Values, body any) (*Response, error) {
	u, err := s.resolve(path, query)
	if err != nil {
		return nil, err
	}
	return s.post(ctx, u, body)
}

func (s *Session) resolve(path string, query url.Values) (*url.URL, error) {
	rel, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	u := s.baseURL.ResolveReference(rel)
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

func (s *Session) post(ctx context.Context, u *url.URL, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *Session) do(req *http.Request) (*Response, error) {
	for k, v := range s.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", req.URL.Path, err)
	}
	if int64(len(body)) > maxBodySize {
		return nil, fmt.Errorf("read %s response: %w (limit %d bytes)", req.URL.Path, ErrBodyTooLarge, maxBodySize)
	}

	s.logger.Debug("request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("opname", req.URL.Query().Get("opname")),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	return &Response{Status: resp.StatusCode, Body: body}, nil
}
