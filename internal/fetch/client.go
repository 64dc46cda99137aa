package fetch

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Getter is the minimal fetch surface consumed by the resolver, repository
// and aggregator packages. Both Client and throttle.Gateway satisfy it.
type Getter interface {
	GetJSON(url string, ttl time.Duration, dst any) error
}

// entry is a cached response body with its fetch time. Freshness is decided
// at read time against the caller's TTL, so the same URL can be read with
// different TTLs by different callers.
type entry struct {
	body      []byte
	fetchedAt time.Time
}

// Client fetches JSON documents with an in-memory cache keyed by URL.
// Concurrent requests for the same URL are coalesced so at most one HTTP
// call is in flight per key.
type Client struct {
	http  *http.Client
	group singleflight.Group

	mu    sync.Mutex
	cache *gocache.Cache

	now func() time.Time // test hook
}

// NewClient creates a cached JSON client.
func NewClient() *Client {
	return &Client{
		http:  &http.Client{Timeout: 30 * time.Second},
		cache: gocache.New(gocache.NoExpiration, 10*time.Minute),
		now:   time.Now,
	}
}

// GetJSON returns the document at url decoded into dst. A cached body is
// used when its age is below ttl; ttl <= 0 means any cached body is good for
// the process lifetime. A fetch failure is returned to the caller but never
// clears a previously stored good entry.
func (c *Client) GetJSON(url string, ttl time.Duration, dst any) error {
	if body, ok := c.lookup(url, ttl); ok {
		return json.Unmarshal(body, dst)
	}

	v, err, _ := c.group.Do(url, func() (any, error) {
		// Re-check under singleflight: a concurrent caller may have just
		// populated the entry.
		if body, ok := c.lookup(url, ttl); ok {
			return body, nil
		}
		body, err := c.fetch(url)
		if err != nil {
			return nil, err
		}
		c.store(url, body)
		return body, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.([]byte), dst)
}

func (c *Client) lookup(url string, ttl time.Duration) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.cache.Get(url)
	if !ok {
		return nil, false
	}
	e := v.(entry)
	if ttl > 0 && c.now().Sub(e.fetchedAt) >= ttl {
		return nil, false
	}
	return e.body, true
}

func (c *Client) store(url string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Entries never expire on their own; staleness is judged per read so a
	// stale body still counts as "present" for ttl <= 0 callers.
	c.cache.Set(url, entry{body: body, fetchedAt: c.now()}, gocache.NoExpiration)
}

func (c *Client) fetch(url string) ([]byte, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", "eve-craftcost/1.0 (github.com)")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode, Body: string(body)}
	}
	// Some sources mislabel content type; the only contract is that the body
	// parses as JSON.
	if !json.Valid(body) {
		return nil, &MalformedResponseError{URL: url, Err: errNotJSON}
	}
	return body, nil
}
