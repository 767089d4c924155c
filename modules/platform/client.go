package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/guarzo/schooladmin/common"
	"github.com/guarzo/schooladmin/common/model"
)

// Keys under which the session credential is persisted.
const (
	TokenKey       = "authToken"
	TokenExpiryKey = "tokenExpiry"
)

// DefaultSessionLifetime is assumed when a login response carries no usable expiresIn.
const DefaultSessionLifetime = 24 * time.Hour

// PlatformClient is the single point of contact with the platform API:
// authentication, timeouts, status mapping and response caching.
type PlatformClient interface {
	Request(ctx context.Context, endpoint string, opts RequestOptions, cacheOpts *CacheOptions) ([]byte, error)
	GetJSON(ctx context.Context, endpoint string, out interface{}, query url.Values, cacheOpts *CacheOptions) error
	PostJSON(ctx context.Context, endpoint string, body, out interface{}) error
	PutJSON(ctx context.Context, endpoint string, body, out interface{}) error
	PatchJSON(ctx context.Context, endpoint string, body, out interface{}) error
	DeleteJSON(ctx context.Context, endpoint string, out interface{}) error

	Login(ctx context.Context, email, password string) (*model.Session, error)
	Logout(ctx context.Context) error
	Token() (*oauth2.Token, bool)
	State() SessionState

	CacheKey(endpoint string, query url.Values, cacheOpts *CacheOptions) string
	Cache() common.ResponseCache
	InvalidateCache(pattern string) int
	ClearCache()
}

// RequestOptions overrides the defaults of a single call.
type RequestOptions struct {
	Method  string
	Headers map[string]string
	Query   url.Values
	// Body is JSON-encoded unless it is already a []byte.
	Body interface{}
}

// CacheOptions is the cache policy of a single call. A nil *CacheOptions
// means: cache GETs under the endpoint for DefaultCacheTTL.
type CacheOptions struct {
	TTL time.Duration
	// StaleTime is how old an entry may be before the call goes back to the
	// network. Zero means the entry is only stale once it expires.
	StaleTime time.Duration
	CacheKey  string
	// UseCache defaults to true for GET and false for everything else.
	UseCache *bool
}

// NoCache returns options that bypass the cache entirely.
func NoCache() *CacheOptions {
	useCache := false
	return &CacheOptions{UseCache: &useCache}
}

// SessionState is where the client sits in the credential lifecycle.
type SessionState int

const (
	Anonymous SessionState = iota
	Authenticated
)

func (s SessionState) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Option configures a platformClient.
type Option func(*platformClient)

// WithCache replaces the default in-memory response cache.
func WithCache(cache common.ResponseCache) Option {
	return func(c *platformClient) {
		c.cache = cache
	}
}

// WithDeduplicator shares a Deduplicator between clients.
func WithDeduplicator(d *common.Deduplicator) Option {
	return func(c *platformClient) {
		c.dedup = d
	}
}

// WithTokenStore persists the session credential in store.
func WithTokenStore(store common.KeyValueStore) Option {
	return func(c *platformClient) {
		c.store = store
	}
}

// WithTimeout sets the hard per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *platformClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock replaces time.Now for expiry decisions. When the client builds
// its own cache the cache uses the same clock.
func WithClock(now func() time.Time) Option {
	return func(c *platformClient) {
		c.now = now
	}
}

// WithMetrics records request and cache metrics on mc.
func WithMetrics(mc *common.MetricsCollector) Option {
	return func(c *platformClient) {
		c.metrics = mc
	}
}

// WithLogger replaces the standard logrus logger.
func WithLogger(logger log.FieldLogger) Option {
	return func(c *platformClient) {
		c.log = logger
	}
}

type platformClient struct {
	baseURL    string
	httpClient common.HttpClient
	cache      common.ResponseCache
	dedup      *common.Deduplicator
	store      common.KeyValueStore
	metrics    *common.MetricsCollector
	log        log.FieldLogger
	timeout    time.Duration
	now        func() time.Time

	mu    sync.Mutex
	token *oauth2.Token
	// generation changes every time the session is cleared so that a
	// response started under an old session is not cached afterwards.
	generation uint64
}

// NewPlatformClient creates a PlatformClient for the API at baseURL and
// restores any session left in the token store.
func NewPlatformClient(baseURL string, httpClient common.HttpClient, opts ...Option) PlatformClient {
	c := &platformClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		dedup:      common.NewDeduplicator(),
		log:        log.StandardLogger(),
		timeout:    common.DefaultRequestTimeout,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = common.NewResponseCache(common.WithCacheClock(c.now))
	}
	c.restoreSession()
	return c
}

// ---------------------------------------------------
// Request primitive
// ---------------------------------------------------

// Request performs one call. A fresh, non-stale cache entry is returned
// without network I/O; otherwise the call is sent and a 2xx body is cached.
func (c *platformClient) Request(ctx context.Context, endpoint string, opts RequestOptions, cacheOpts *CacheOptions) ([]byte, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	useCache, ttl, staleTime := resolveCacheOptions(method, cacheOpts)
	key := c.CacheKey(endpoint, opts.Query, cacheOpts)
	logger := c.log.WithFields(log.Fields{"method": method, "endpoint": endpoint})

	if useCache {
		if data, found := c.cache.Get(key); found && !c.cache.IsStale(key, staleTime) {
			logger.WithField("cacheKey", key).Debug("cache hit")
			c.metrics.RecordCacheHit(key)
			return data, nil
		}
		logger.WithField("cacheKey", key).Debug("cache miss")
		c.metrics.RecordCacheMiss(key)
	}

	generation := c.currentGeneration()
	data, err := c.doRequest(ctx, method, endpoint, opts)
	if err != nil {
		return nil, err
	}

	if useCache && c.cacheIfCurrent(generation, key, data, ttl) {
		c.metrics.RecordCacheSize(c.cache.Len())
	}
	return data, nil
}

// cacheIfCurrent stores data only if no session clear happened since
// generation was read. c.mu is held across the check and the write so a
// concurrent clearSession either sees the entry and wipes it or wins first.
func (c *platformClient) cacheIfCurrent(generation uint64, key string, data []byte, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		return false
	}
	c.cache.Set(key, data, ttl)
	return true
}

func resolveCacheOptions(method string, cacheOpts *CacheOptions) (useCache bool, ttl, staleTime time.Duration) {
	useCache = method == http.MethodGet
	ttl = common.DefaultCacheTTL
	if cacheOpts == nil {
		return useCache, ttl, ttl
	}
	if cacheOpts.UseCache != nil {
		useCache = *cacheOpts.UseCache
	}
	if cacheOpts.TTL > 0 {
		ttl = cacheOpts.TTL
	}
	staleTime = cacheOpts.StaleTime
	if staleTime <= 0 || staleTime > ttl {
		staleTime = ttl
	}
	return useCache, ttl, staleTime
}

// CacheKey is the explicit key if one is set, otherwise the endpoint, with
// the encoded query appended so differently filtered listings do not collide.
func (c *platformClient) CacheKey(endpoint string, query url.Values, cacheOpts *CacheOptions) string {
	key := endpoint
	if cacheOpts != nil && cacheOpts.CacheKey != "" {
		key = cacheOpts.CacheKey
	}
	if len(query) > 0 {
		key = key + ":" + query.Encode()
	}
	return key
}

// doRequest sends the call under the client's hard timeout and maps the outcome.
func (c *platformClient) doRequest(ctx context.Context, method, endpoint string, opts RequestOptions) ([]byte, error) {
	requestID := uuid.NewString()

	urlStr, err := c.buildURL(endpoint, opts.Query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if opts.Body != nil {
		payload, ok := opts.Body.([]byte)
		if !ok {
			if payload, err = json.Marshal(opts.Body); err != nil {
				return nil, fmt.Errorf("failed to encode request body: %w", err)
			}
		}
		body = bytes.NewReader(payload)
	}

	// Joined callers share this call, so one caller going away must not abort it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if token, ok := c.Token(); ok {
		token.SetAuthHeader(req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err, method, endpoint, requestID)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(ctx, err, method, endpoint, requestID)
	}
	c.metrics.RecordRequest(method, endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError(resp, data, endpoint, requestID)
	}
	return data, nil
}

func (c *platformClient) transportError(ctx context.Context, err error, method, endpoint, requestID string) error {
	apiErr := &common.APIError{
		Kind:      common.ErrNetwork,
		Message:   "network request failed",
		Endpoint:  endpoint,
		RequestID: requestID,
		Cause:     err,
	}
	if isTimeout(ctx, err) {
		apiErr.Kind = common.ErrTimeout
		apiErr.Message = fmt.Sprintf("request timed out after %s", c.timeout)
	}
	c.metrics.RecordError(apiErr.Kind, endpoint)
	c.log.WithFields(log.Fields{
		"method":    method,
		"endpoint":  endpoint,
		"requestID": requestID,
	}).WithError(err).Warn(apiErr.Message)
	return apiErr
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// statusError maps a non-2xx response. A 401 ends the session.
func (c *platformClient) statusError(resp *http.Response, body []byte, endpoint, requestID string) error {
	kind := common.KindForStatus(resp.StatusCode)
	apiErr := &common.APIError{
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Message:    serverMessage(body),
		Endpoint:   endpoint,
		RequestID:  requestID,
		Body:       body,
	}

	switch kind {
	case common.ErrAuthentication:
		c.clearSession("server rejected credential")
		if apiErr.Message == "" {
			apiErr.Message = "session expired, please log in again"
		}
	case common.ErrAuthorization:
		if apiErr.Message == "" {
			apiErr.Message = "you do not have permission to perform this action"
		}
	case common.ErrRateLimited:
		apiErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		if apiErr.Message == "" {
			apiErr.Message = "too many requests, please try again later"
		}
	default:
		if apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
	}

	c.metrics.RecordError(kind, endpoint)
	c.log.WithFields(log.Fields{
		"endpoint":  endpoint,
		"status":    resp.StatusCode,
		"requestID": requestID,
	}).Debug(apiErr.Message)
	return apiErr
}

// serverMessage pulls a human-readable message out of an error body, if any.
func serverMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	if msg := gjson.GetBytes(body, "message").String(); msg != "" {
		return msg
	}
	return gjson.GetBytes(body, "error").String()
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// buildURL joins baseURL, endpoint and query.
func (c *platformClient) buildURL(endpoint string, query url.Values) (string, error) {
	u, err := url.Parse(c.baseURL + "/" + strings.TrimLeft(endpoint, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// ---------------------------------------------------
// Typed helpers
// ---------------------------------------------------

// GetJSON reads endpoint into out. Concurrent reads of the same cache key
// share one request.
func (c *platformClient) GetJSON(ctx context.Context, endpoint string, out interface{}, query url.Values, cacheOpts *CacheOptions) error {
	key := c.CacheKey(endpoint, query, cacheOpts)
	data, shared, err := c.dedup.Do(key, func() ([]byte, error) {
		c.metrics.RecordInFlight(c.dedup.InFlight())
		defer func() { c.metrics.RecordInFlight(c.dedup.InFlight() - 1) }()
		return c.Request(ctx, endpoint, RequestOptions{Method: http.MethodGet, Query: query}, cacheOpts)
	})
	if shared {
		c.metrics.RecordDedupShared(key)
		c.log.WithField("cacheKey", key).Debug("shared in-flight request")
	}
	if err != nil {
		return err
	}
	return decode(data, out, endpoint)
}

func (c *platformClient) PostJSON(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.send(ctx, http.MethodPost, endpoint, body, out)
}

func (c *platformClient) PutJSON(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.send(ctx, http.MethodPut, endpoint, body, out)
}

func (c *platformClient) PatchJSON(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.send(ctx, http.MethodPatch, endpoint, body, out)
}

func (c *platformClient) DeleteJSON(ctx context.Context, endpoint string, out interface{}) error {
	return c.send(ctx, http.MethodDelete, endpoint, nil, out)
}

// send performs a write. Writes are never cached and never evict reads.
func (c *platformClient) send(ctx context.Context, method, endpoint string, body, out interface{}) error {
	data, err := c.Request(ctx, endpoint, RequestOptions{Method: method, Body: body}, NoCache())
	if err != nil {
		return err
	}
	return decode(data, out, endpoint)
}

func decode(data []byte, out interface{}, endpoint string) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := model.JSONUnmarshal(data, out); err != nil {
		return &common.APIError{
			Kind:     common.ErrDecode,
			Message:  "unexpected response shape",
			Endpoint: endpoint,
			Body:     data,
			Cause:    err,
		}
	}
	return nil
}

// ---------------------------------------------------
// Cache control
// ---------------------------------------------------

func (c *platformClient) Cache() common.ResponseCache {
	return c.cache
}

// InvalidateCache drops every entry whose key contains pattern.
func (c *platformClient) InvalidateCache(pattern string) int {
	n := c.cache.DeleteMatching(pattern)
	c.metrics.RecordCacheSize(c.cache.Len())
	return n
}

func (c *platformClient) ClearCache() {
	c.cache.Clear()
	c.metrics.RecordCacheSize(0)
}
