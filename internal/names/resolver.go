package names

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/samber/lo"

	"eve-craftcost/internal/fetch"
	"eve-craftcost/internal/logger"
)

const lookupBaseURL = "https://www.fuzzwork.co.uk/api/typeid2.php"

// Item names resolve through a long-lived index; type IDs never change
// meaning, so 24h is purely about picking up newly released items.
const lookupTTL = 24 * time.Hour

// batchSize keeps lookup URLs under length limits.
const batchSize = 20

// Store is the persistent slot for the name index.
type Store interface {
	LoadNameIndex() (map[string]int32, time.Time)
	SaveNameIndex(index map[string]int32) error
}

// UnresolvedNameError reports a name the lookup endpoint does not know.
// Resolve itself never returns it; callers that require a specific name
// (the root item of a costing run) construct it from a missing key.
type UnresolvedNameError struct {
	Name string
}

func (e *UnresolvedNameError) Error() string {
	return fmt.Sprintf("name %q could not be resolved to a type ID", e.Name)
}

// Resolver maps display names to type IDs with an in-memory index backed by
// a persistent store, falling back to a batch lookup endpoint.
type Resolver struct {
	client fetch.Getter
	store  Store

	mu     sync.Mutex
	index  map[string]int32
	loaded bool
}

// NewResolver creates a resolver over the given fetch client and store.
// Store may be nil (no persistence, e.g. in tests).
func NewResolver(client fetch.Getter, store Store) *Resolver {
	return &Resolver{client: client, store: store, index: make(map[string]int32)}
}

// Resolve returns type IDs for the requested names. Names the endpoint
// cannot resolve are simply absent from the result; callers treat a missing
// key as unresolvable and report it rather than failing the whole set.
func (r *Resolver) Resolve(names []string) (map[string]int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.loaded {
		if r.store != nil {
			index, savedAt := r.store.LoadNameIndex()
			r.index = index
			if len(index) > 0 {
				logger.Info("Names", fmt.Sprintf("Loaded %d names (saved %s)", len(index), savedAt.Format("2006-01-02")))
			}
		}
		r.loaded = true
	}

	var missing []string
	for _, name := range names {
		if _, ok := r.index[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		resolvedAny := false
		for _, batch := range lo.Chunk(missing, batchSize) {
			pairs, err := r.lookup(batch)
			if err != nil {
				return nil, fmt.Errorf("resolve names: %w", err)
			}
			for name, id := range pairs {
				r.index[name] = id
				resolvedAny = true
			}
		}
		if resolvedAny && r.store != nil {
			if err := r.store.SaveNameIndex(r.index); err != nil {
				logger.Warn("Names", fmt.Sprintf("Persist index: %v", err))
			}
		}
	}

	result := make(map[string]int32, len(names))
	for _, name := range names {
		if id, ok := r.index[name]; ok {
			result[name] = id
		}
	}
	return result, nil
}

// lookup fetches one batch from the name lookup endpoint. Unresolvable
// names are omitted from the response.
func (r *Resolver) lookup(batch []string) (map[string]int32, error) {
	q := url.Values{}
	for _, name := range batch {
		q.Add("typename", name)
	}
	lookupURL := lookupBaseURL + "?format=json&" + q.Encode()

	var rows []struct {
		TypeName string `json:"typeName"`
		TypeID   int32  `json:"typeID"`
	}
	if err := r.client.GetJSON(lookupURL, lookupTTL, &rows); err != nil {
		return nil, err
	}

	pairs := make(map[string]int32, len(rows))
	for _, row := range rows {
		if row.TypeID > 0 && row.TypeName != "" {
			pairs[row.TypeName] = row.TypeID
		}
	}
	return pairs, nil
}
