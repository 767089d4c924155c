package platform

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Query serves reads stale-while-revalidate: a cached body is returned at
// once and, when it is past its stale time, one background refresh is
// started. Only a cold cache makes the caller wait.
type Query struct {
	client PlatformClient
	log    log.FieldLogger
	wg     sync.WaitGroup

	mu      sync.Mutex
	lastErr error
}

func NewQuery(client PlatformClient, logger log.FieldLogger) *Query {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Query{client: client, log: logger}
}

// LoadJSON decodes the freshest available body of endpoint into out and
// reports whether that body was stale.
func (q *Query) LoadJSON(ctx context.Context, endpoint string, out interface{}, query url.Values, cacheOpts *CacheOptions) (bool, error) {
	cache := q.client.Cache()
	key := q.client.CacheKey(endpoint, query, cacheOpts)
	_, _, staleTime := resolveCacheOptions(http.MethodGet, cacheOpts)

	data, found := cache.Get(key)
	if !found {
		return false, q.client.GetJSON(ctx, endpoint, out, query, cacheOpts)
	}

	stale := cache.IsStale(key, staleTime)
	if stale {
		q.revalidate(ctx, endpoint, query, cacheOpts)
	}
	return stale, decode(data, out, endpoint)
}

// revalidate refreshes the entry in the background. Overlapping refreshes
// of one key collapse into a single request in GetJSON.
func (q *Query) revalidate(ctx context.Context, endpoint string, query url.Values, cacheOpts *CacheOptions) {
	ctx = context.WithoutCancel(ctx)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		err := q.client.GetJSON(ctx, endpoint, nil, query, cacheOpts)

		q.mu.Lock()
		q.lastErr = err
		q.mu.Unlock()

		if err != nil {
			q.log.WithError(err).WithField("endpoint", endpoint).Warn("background refresh failed")
		}
	}()
}

// Wait blocks until every background refresh has settled.
func (q *Query) Wait() {
	q.wg.Wait()
}

// LastError is the outcome of the most recent background refresh.
func (q *Query) LastError() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastErr
}
