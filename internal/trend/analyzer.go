package trend

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"eve-craftcost/internal/fetch"
)

const (
	historyBaseURL = "https://api.adam4eve.eu/v1/market_price_history"
	volumeBaseURL  = "https://api.adam4eve.eu/v1/trade_volume_daily"
)

// Both endpoints sit behind the rate-limited gateway; a longer TTL keeps
// repeat lookups from burning the request budget.
const trendTTL = 10 * time.Minute

// The two endpoint families accept different batch sizes.
const (
	historyBatchSize = 80
	volumeBatchSize  = 20
)

// Stats are 7-day (by default) price statistics for one type.
type Stats struct {
	First         float64
	Last          float64
	Min           float64
	Max           float64
	Average       float64
	PercentChange float64
	ChangeDefined bool // false when the first price is zero/unknown
	Points        int  // valid price points in the window
}

// Analyzer derives price statistics and traded-volume estimates from the
// throttled history source. Batches are issued sequentially; callers
// awaiting several batches see cumulative gateway latency.
type Analyzer struct {
	gateway  fetch.Getter
	regionID int32
	now      func() time.Time
}

// NewAnalyzer creates an analyzer for one region over the rate-limited
// gateway.
func NewAnalyzer(gateway fetch.Getter, regionID int32) *Analyzer {
	return &Analyzer{gateway: gateway, regionID: regionID, now: time.Now}
}

type historyRow struct {
	TypeID   int32   `json:"type_id"`
	Date     string  `json:"price_date"`
	AvgPrice float64 `json:"avg_price"`
}

// Stats fetches per-day average sell prices for the window and reduces them
// per type. Types with no valid points are absent from the result.
func (a *Analyzer) Stats(typeIDs []int32, windowDays int) (map[int32]Stats, error) {
	if windowDays <= 0 {
		windowDays = 7
	}
	end := a.now().UTC()
	start := end.AddDate(0, 0, -windowDays)

	series := make(map[int32][]historyRow)
	for _, batch := range lo.Chunk(typeIDs, historyBatchSize) {
		url := fmt.Sprintf("%s?regionID=%d&typeID=%s&startDate=%s&endDate=%s",
			historyBaseURL, a.regionID, joinIDs(batch),
			start.Format("2006-01-02"), end.Format("2006-01-02"))

		var rows []historyRow
		if err := a.gateway.GetJSON(url, trendTTL, &rows); err != nil {
			return nil, fmt.Errorf("price history: %w", err)
		}
		for _, row := range rows {
			series[row.TypeID] = append(series[row.TypeID], row)
		}
	}

	result := make(map[int32]Stats, len(series))
	for id, rows := range series {
		if s, ok := reduce(rows); ok {
			result[id] = s
		}
	}
	return result, nil
}

// reduce computes stats over one type's series. The source does not
// guarantee chronological order, so rows are sorted by date first; only
// positive prices count as valid points.
func reduce(rows []historyRow) (Stats, bool) {
	sorted := make([]historyRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	var s Stats
	var sum float64
	for _, row := range sorted {
		if row.AvgPrice <= 0 {
			continue
		}
		if s.Points == 0 {
			s.First = row.AvgPrice
			s.Min = row.AvgPrice
			s.Max = row.AvgPrice
		}
		s.Last = row.AvgPrice
		s.Min = math.Min(s.Min, row.AvgPrice)
		s.Max = math.Max(s.Max, row.AvgPrice)
		sum += row.AvgPrice
		s.Points++
	}
	if s.Points == 0 {
		return Stats{}, false
	}
	s.Average = sum / float64(s.Points)
	if s.First > 0 {
		s.PercentChange = (s.Last - s.First) / s.First * 100
		s.ChangeDefined = true
	}
	return s, true
}

type volumeRow struct {
	TypeID int32 `json:"type_id"`
	Amount int64 `json:"amount"`
}

// TradedVolumeYesterday fetches how many units traded yesterday per type at
// one location.
func (a *Analyzer) TradedVolumeYesterday(typeIDs []int32, locationID int64) (map[int32]int64, error) {
	date := a.now().UTC().AddDate(0, 0, -1).Format("2006-01-02")

	result := make(map[int32]int64, len(typeIDs))
	for _, batch := range lo.Chunk(typeIDs, volumeBatchSize) {
		url := fmt.Sprintf("%s?date=%s&side=sell&locationID=%d&typeID=%s",
			volumeBaseURL, date, locationID, joinIDs(batch))

		var rows []volumeRow
		if err := a.gateway.GetJSON(url, trendTTL, &rows); err != nil {
			return nil, fmt.Errorf("traded volume: %w", err)
		}
		for _, row := range rows {
			result[row.TypeID] = row.Amount
		}
	}
	return result, nil
}

// Volatility is the price swing over the window relative to its average.
func Volatility(s Stats) float64 {
	if s.Average <= 0 {
		return 0
	}
	return (s.Max - s.Min) / s.Average
}

// FlipScore ranks thin/flip candidates: volatile items that actually trade,
// discounted by how much stock is already listed.
func FlipScore(volatility, soldPerDay, listedDepth float64) float64 {
	if soldPerDay < 0 {
		soldPerDay = 0
	}
	if listedDepth < 0 {
		listedDepth = 0
	}
	return volatility * math.Log(1+soldPerDay) / math.Log(2+listedDepth)
}

// BuyTrigger suggests a buy price: 10% above the window minimum, or 10%
// under the current price when no history exists.
func BuyTrigger(s Stats, currentPrice float64) float64 {
	if s.Points > 0 {
		return s.Min * 1.10
	}
	return currentPrice * 0.90
}

// SellTarget suggests a sell price: 5% under the window maximum, or 10%
// over the current price when no history exists.
func SellTarget(s Stats, currentPrice float64) float64 {
	if s.Points > 0 {
		return s.Max * 0.95
	}
	return currentPrice * 1.10
}

func joinIDs(typeIDs []int32) string {
	out := ""
	for i, id := range typeIDs {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%d", id)
	}
	return out
}
