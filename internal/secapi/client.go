package secapi

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

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	pathSearch             = "/api/search"
	pathFilings            = "/api/filings"
	pathScan               = "/api/scan"
	pathGenerate           = "/api/generate"
	pathIndustries         = "/api/industries"
	pathLandscapeGenerate  = "/api/landscape/generate"
	pathValueChains        = "/api/value-chains"
	pathValueChainGenerate = "/api/value-chain/generate"
)

// Client talks to the document-generation service.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
	cache   *cache.Cache
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithCache keeps successful search, industry and value chain responses for
// ttl. A non-positive ttl disables caching.
func WithCache(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.cache = cache.New(ttl, 2*ttl)
		} else {
			c.cache = nil
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Search returns the companies matching query. An empty query returns no
// results without a request.
func (c *Client) Search(ctx context.Context, query string) ([]Company, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	key := "search:" + strings.ToLower(query)
	if cached, ok := c.cached(key); ok {
		return append([]Company(nil), cached.([]Company)...), nil
	}
	var out []Company
	if err := c.getJSON(ctx, pathSearch, url.Values{"q": {query}}, &out); err != nil {
		return nil, err
	}
	c.store(key, out)
	return append([]Company(nil), out...), nil
}

func (c *Client) Filings(ctx context.Context, cik string) ([]Filing, error) {
	var out []Filing
	if err := c.getJSON(ctx, pathFilings, url.Values{"cik": {strings.TrimSpace(cik)}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Scan(ctx context.Context, req ScanRequest) (ScanResult, error) {
	var out ScanResult
	if err := c.postJSON(ctx, pathScan, req, &out); err != nil {
		return ScanResult{}, err
	}
	return out, nil
}

func (c *Client) Generate(ctx context.Context, req GenerateRequest) (Artifact, error) {
	return c.postArtifact(ctx, pathGenerate, req)
}

func (c *Client) Industries(ctx context.Context) ([]Industry, error) {
	if cached, ok := c.cached("industries"); ok {
		return cached.([]Industry), nil
	}
	var out industriesEnvelope
	if err := c.getJSON(ctx, pathIndustries, nil, &out); err != nil {
		return nil, err
	}
	c.store("industries", out.Industries)
	return out.Industries, nil
}

func (c *Client) GenerateLandscape(ctx context.Context, req LandscapeRequest) (Artifact, error) {
	return c.postArtifact(ctx, pathLandscapeGenerate, req)
}

func (c *Client) ValueChains(ctx context.Context) ([]ValueChain, error) {
	if cached, ok := c.cached("value-chains"); ok {
		return cached.([]ValueChain), nil
	}
	var out valueChainsEnvelope
	if err := c.getJSON(ctx, pathValueChains, nil, &out); err != nil {
		return nil, err
	}
	c.store("value-chains", out.ValueChains)
	return out.ValueChains, nil
}

func (c *Client) GenerateValueChain(ctx context.Context, req ValueChainRequest) (Artifact, error) {
	return c.postArtifact(ctx, pathValueChainGenerate, req)
}

func (c *Client) cached(key string) (any, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *Client) store(key string, value any) {
	if c.cache == nil {
		return
	}
	c.cache.SetDefault(key, value)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	return c.doJSON(req, path, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	req, err := c.newPost(ctx, path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.doJSON(req, path, out)
}

func (c *Client) newPost(ctx context.Context, path string, payload any) (*http.Request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) doJSON(req *http.Request, path string, out any) error {
	status, _, body, err := c.do(req, path)
	if err != nil {
		return err
	}
	if msg := serverMessage(body); msg != "" {
		c.log.Warn("service reported error", zap.String("endpoint", path), zap.Int("status", status), zap.String("error", msg))
		return &APIError{Endpoint: path, Status: status, Message: msg}
	}
	if status < 200 || status > 299 {
		c.log.Warn("unexpected status", zap.String("endpoint", path), zap.Int("status", status))
		return &APIError{Endpoint: path, Status: status}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) postArtifact(ctx context.Context, path string, payload any) (Artifact, error) {
	req, err := c.newPost(ctx, path, payload)
	if err != nil {
		return Artifact{}, err
	}
	status, header, body, err := c.do(req, path)
	if err != nil {
		return Artifact{}, err
	}
	if status < 200 || status > 299 {
		msg := serverMessage(body)
		c.log.Warn("generation failed", zap.String("endpoint", path), zap.Int("status", status), zap.String("error", msg))
		return Artifact{}, &APIError{Endpoint: path, Status: status, Message: msg}
	}
	c.log.Info("artifact received", zap.String("endpoint", path), zap.Int("bytes", len(body)))
	return Artifact{
		Filename:    FilenameFromDisposition(header.Get("Content-Disposition")),
		ContentType: header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (c *Client) do(req *http.Request, path string) (int, http.Header, []byte, error) {
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("request failed", zap.String("endpoint", path), zap.Error(err))
		return 0, nil, nil, &TransportError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Error("read response failed", zap.String("endpoint", path), zap.Error(err))
		return 0, nil, nil, &TransportError{Endpoint: path, Err: err}
	}
	c.log.Debug("response",
		zap.String("method", req.Method),
		zap.String("endpoint", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return resp.StatusCode, resp.Header, body, nil
}
