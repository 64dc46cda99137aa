package market

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"eve-craftcost/internal/fetch"
	"eve-craftcost/internal/logger"
)

const aggregatesBaseURL = "https://market.fuzzwork.co.uk/aggregates/"

// Prices move quickly; quotes are expected to go stale within a minute.
const quoteTTL = 60 * time.Second

// PriceMode selects which side of the book prices a material.
type PriceMode string

const (
	SellMin PriceMode = "sell_min" // lowest sell-order price
	BuyMax  PriceMode = "buy_max"  // highest buy-order price
)

// Quote is the best sell/buy picture for one type at one location. A side
// with ok=false is unknown, never zero.
type Quote struct {
	SellMin    float64
	BuyMax     float64
	SellVolume int64
	BuyVolume  int64
	HasSell    bool
	HasBuy     bool
}

// UnitPrice returns the unit price of q under the given mode. Absent data
// yields ok=false; unknowns must propagate as unknowns through sums.
func UnitPrice(q Quote, mode PriceMode) (float64, bool) {
	switch mode {
	case BuyMax:
		return q.BuyMax, q.HasBuy
	default:
		return q.SellMin, q.HasSell
	}
}

// Aggregator fetches best-quote snapshots per trading location.
type Aggregator struct {
	client fetch.Getter
}

// NewAggregator creates an aggregator over the given fetch client.
func NewAggregator(client fetch.Getter) *Aggregator {
	return &Aggregator{client: client}
}

// aggregateDoc mirrors the aggregates endpoint: typeID -> per-side stats.
// A side with zero volume and zero price means no orders on that side.
type aggregateDoc map[string]struct {
	Buy struct {
		Max    float64 `json:"max"`
		Volume int64   `json:"volume"`
	} `json:"buy"`
	Sell struct {
		Min    float64 `json:"min"`
		Volume int64   `json:"volume"`
	} `json:"sell"`
}

// Quotes fetches quotes for all types at all locations. Locations are
// queried concurrently; a failed location yields an empty quote set for that
// location only, logged but not fatal to the others.
func (a *Aggregator) Quotes(locationIDs []int64, typeIDs []int32) map[int64]map[int32]Quote {
	result := make(map[int64]map[int32]Quote, len(locationIDs))
	var mu sync.Mutex

	var g errgroup.Group
	for _, locID := range locationIDs {
		locID := locID
		g.Go(func() error {
			quotes, err := a.locationQuotes(locID, typeIDs)
			if err != nil {
				logger.Warn("Market", fmt.Sprintf("Location %d: %v", locID, err))
				quotes = map[int32]Quote{}
			}
			mu.Lock()
			result[locID] = quotes
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return result
}

func (a *Aggregator) locationQuotes(locationID int64, typeIDs []int32) (map[int32]Quote, error) {
	if len(typeIDs) == 0 {
		return map[int32]Quote{}, nil
	}
	url := fmt.Sprintf("%s?station=%d&types=%s", aggregatesBaseURL, locationID, joinIDs(typeIDs))

	var doc aggregateDoc
	if err := a.client.GetJSON(url, quoteTTL, &doc); err != nil {
		return nil, err
	}

	quotes := make(map[int32]Quote, len(doc))
	for key, sides := range doc {
		id, err := strconv.ParseInt(key, 10, 32)
		if err != nil {
			continue
		}
		quotes[int32(id)] = Quote{
			SellMin:    sides.Sell.Min,
			BuyMax:     sides.Buy.Max,
			SellVolume: sides.Sell.Volume,
			BuyVolume:  sides.Buy.Volume,
			HasSell:    sides.Sell.Min > 0,
			HasBuy:     sides.Buy.Max > 0,
		}
	}
	return quotes, nil
}

// joinIDs renders type IDs as a stable comma-separated list so the cache key
// is identical for identical sets.
func joinIDs(typeIDs []int32) string {
	sorted := make([]int32, len(typeIDs))
	copy(sorted, typeIDs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, ",")
}
