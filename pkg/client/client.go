package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treewalk/pkg/buildinfo"
	"github.com/matzehuels/treewalk/pkg/cache"
	"github.com/matzehuels/treewalk/pkg/errors"
	"github.com/matzehuels/treewalk/pkg/httputil"
	"github.com/matzehuels/treewalk/pkg/observability"
	"github.com/matzehuels/treewalk/pkg/tree"
)

// Defaults for [New].
const (
	DefaultServer   = "http://localhost:5000"
	DefaultTimeout  = 10 * time.Second
	DefaultAttempts = 3
	DefaultDelay    = 500 * time.Millisecond
	DefaultCacheTTL = 24 * time.Hour
)

const (
	treePath   = "/tree"
	searchPath = "/tree/search"
)

// Client is an HTTP client for the tree service.
type Client struct {
	base     *url.URL
	http     *http.Client
	attempts int
	delay    time.Duration
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	logger   *log.Logger

	mu       sync.Mutex
	treeHash string // hash of the last tree fetched or loaded from cache
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithRetry sets the number of attempts and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) { c.attempts, c.delay = attempts, delay }
}

// WithCache stores every fetched tree in cc for ttl.
func WithCache(cc cache.Cache, keyer cache.Keyer, ttl time.Duration) Option {
	return func(c *Client) { c.cache, c.keyer, c.ttl = cc, keyer, ttl }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *log.Logger) Option { return func(c *Client) { c.logger = l } }

// New returns a client for the service at server.
func New(server string, opts ...Option) (*Client, error) {
	if err := errors.ValidateURL(server); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimRight(server, "/"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse server url")
	}

	c := &Client{
		base:     base,
		http:     &http.Client{Timeout: DefaultTimeout},
		attempts: DefaultAttempts,
		delay:    DefaultDelay,
		ttl:      DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = cache.NewNullCache()
	}
	if c.keyer == nil {
		c.keyer = cache.NewDefaultKeyer()
	}
	if c.logger == nil {
		c.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return c, nil
}

// Server returns the service base URL.
func (c *Client) Server() string { return c.base.String() }

// FetchTree implements [Source].
func (c *Client) FetchTree(ctx context.Context) (tree.NodeList, error) {
	var nodes tree.NodeList
	err := c.do(ctx, http.MethodGet, treePath, nil, func(r io.Reader) error {
		var err error
		nodes, err = tree.ReadNodes(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.storeTree(ctx, nodes)
	return nodes, nil
}

// SearchPath implements [Source].
func (c *Client) SearchPath(ctx context.Context, value float64) ([]tree.NodeID, error) {
	body, err := json.Marshal(searchRequest{Value: value})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode search request")
	}

	var resp searchResponse
	err = c.do(ctx, http.MethodPost, searchPath, body, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&resp)
	})
	if err != nil {
		return nil, err
	}
	c.storePath(ctx, value, resp.SearchPath)
	return resp.SearchPath, nil
}

// CachedPath returns the path previously returned for value on the current
// tree, if any.
func (c *Client) CachedPath(ctx context.Context, value float64) ([]tree.NodeID, bool, error) {
	hash := c.currentHash()
	if hash == "" {
		return nil, false, nil
	}
	data, ok, err := c.cache.Get(ctx, c.keyer.PathKey(c.Server(), hash, value))
	if err != nil || !ok {
		return nil, false, err
	}
	var path []tree.NodeID
	if err := json.Unmarshal(data, &path); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode cached path")
	}
	return path, true, nil
}

// SearchPathOrCached is [Client.SearchPath] with the same fallback as
// [Client.FetchTreeOrCached].
func (c *Client) SearchPathOrCached(ctx context.Context, value float64) ([]tree.NodeID, error) {
	path, err := c.SearchPath(ctx, value)
	if err == nil || !errors.Is(err, errors.ErrCodeTransport) {
		return path, err
	}
	cached, ok, cerr := c.CachedPath(ctx, value)
	if cerr != nil || !ok {
		return nil, err
	}
	c.logger.Warn("tree service unavailable, using cached path", "value", value, "err", err)
	return cached, err
}

// CachedTree returns the last tree fetched from this server, if any.
func (c *Client) CachedTree(ctx context.Context) (tree.NodeList, bool, error) {
	data, ok, err := c.cache.Get(ctx, c.keyer.TreeKey(c.Server()))
	if err != nil || !ok {
		return nil, false, err
	}
	nodes, err := tree.ReadNodes(bytes.NewReader(data))
	if err != nil {
		return nil, false, err
	}
	c.setHash(cache.Hash(data))
	return nodes, true, nil
}

// FetchTreeOrCached fetches the tree and falls back to the cached copy when
// the service cannot be reached. The transport error is returned alongside
// cached nodes so the caller can report it.
func (c *Client) FetchTreeOrCached(ctx context.Context) (tree.NodeList, error) {
	nodes, err := c.FetchTree(ctx)
	if err == nil || !errors.Is(err, errors.ErrCodeTransport) {
		return nodes, err
	}
	cached, ok, cerr := c.CachedTree(ctx)
	if cerr != nil || !ok {
		return nil, err
	}
	c.logger.Warn("tree service unavailable, using cached tree", "server", c.Server(), "err", err)
	return cached, err
}

func (c *Client) storeTree(ctx context.Context, nodes tree.NodeList) {
	var buf bytes.Buffer
	if err := tree.WriteNodes(&buf, nodes); err != nil {
		return
	}
	c.setHash(cache.Hash(buf.Bytes()))
	if err := c.cache.Set(ctx, c.keyer.TreeKey(c.Server()), buf.Bytes(), c.ttl); err != nil {
		c.logger.Debug("cache write failed", "err", err)
	}
}

func (c *Client) storePath(ctx context.Context, value float64, path []tree.NodeID) {
	hash := c.currentHash()
	if hash == "" {
		return
	}
	data, err := json.Marshal(path)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, c.keyer.PathKey(c.Server(), hash, value), data, c.ttl); err != nil {
		c.logger.Debug("cache write failed", "err", err)
	}
}

func (c *Client) setHash(h string) {
	c.mu.Lock()
	c.treeHash = h
	c.mu.Unlock()
}

func (c *Client) currentHash() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.treeHash
}

type searchRequest struct {
	Value float64 `json:"value"`
}

type searchResponse struct {
	SearchPath []tree.NodeID `json:"searchPath"`
}

// do sends one request with retries and hands a 2xx body to decode.
func (c *Client) do(ctx context.Context, method, path string, body []byte, decode func(io.Reader) error) error {
	u := c.base.JoinPath(path)
	hooks := observability.HTTP()

	err := httputil.Retry(ctx, c.attempts, c.delay, func() error {
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", buildinfo.UserAgent())
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		hooks.OnRequest(ctx, method, u.Host, u.Path)
		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			hooks.OnError(ctx, method, u.Host, u.Path, err)
			if ctx.Err() != nil {
				return err
			}
			c.logger.Debug("request failed", "method", method, "url", u, "err", err)
			return httputil.Retryable(err)
		}
		defer resp.Body.Close()
		hooks.OnResponse(ctx, method, u.Host, u.Path, resp.StatusCode, time.Since(start))

		if err := httputil.CheckStatus(resp); err != nil {
			c.logger.Debug("bad status", "method", method, "url", u, "status", resp.StatusCode)
			return err
		}
		if err := decode(resp.Body); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeTransport, err, "%s %s", method, path)
	}
	return nil
}
