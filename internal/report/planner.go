package report

import (
	"fmt"

	"github.com/shopspring/decimal"

	"eve-craftcost/internal/config"
	"eve-craftcost/internal/costing"
	"eve-craftcost/internal/expand"
	"eve-craftcost/internal/logger"
	"eve-craftcost/internal/market"
	"eve-craftcost/internal/names"
	"eve-craftcost/internal/recipes"
	"eve-craftcost/internal/trend"
)

// NameSource resolves display names to type IDs.
type NameSource interface {
	Resolve(names []string) (map[string]int32, error)
}

// QuoteSource prices a set of types across trading locations.
type QuoteSource interface {
	Quotes(locationIDs []int64, typeIDs []int32) map[int64]map[int32]market.Quote
}

// TrendSource supplies advisory price statistics. Optional; a nil source
// simply leaves advisory fields absent.
type TrendSource interface {
	Stats(typeIDs []int32, windowDays int) (map[int32]trend.Stats, error)
	TradedVolumeYesterday(typeIDs []int32, locationID int64) (map[int32]int64, error)
}

// Advisory is the trend-derived signal set for one type. Plain data for the
// report layer.
type Advisory struct {
	Stats      trend.Stats
	SoldPerDay int64
	FlipScore  float64
	BuyTrigger float64
	SellTarget float64
}

// Report is the full output of one costing run: expansion result, quotes per
// hub, financial summary and advisory signals. Immutable once returned.
type Report struct {
	ItemName     string
	TypeID       int32
	Runs         int64
	MaxDepth     int
	OutputPerRun int64

	Materials  []expand.Material
	Quotes     map[int64]map[int32]market.Quote
	CostingHub config.Hub
	Summary    costing.Summary

	Advisory map[int32]Advisory // empty when trend data is unavailable
}

// Params are the manual inputs of one costing run; zero values fall back to
// the configured defaults.
type Params struct {
	Runs            int64
	MaxDepth        int
	Hub             string
	Mode            market.PriceMode
	AcquisitionCost float64
}

// Planner wires the resolver, repository, expander, aggregator and analyzer
// into one costing run.
type Planner struct {
	Names    NameSource
	Recipes  expand.RecipeSource
	Expander *expand.Expander
	Market   QuoteSource
	Trends   TrendSource
	Config   *config.Config
}

// Cost produces the full report for one item. Root-level failures (unknown
// name, unreachable or activity-less root recipe) abort; everything below
// degrades per component policy.
func (p *Planner) Cost(itemName string, params Params) (*Report, error) {
	cfg := p.Config
	if params.Runs <= 0 {
		params.Runs = cfg.Runs
	}
	if params.MaxDepth <= 0 {
		params.MaxDepth = cfg.MaxDepth
	}
	if params.Hub == "" {
		params.Hub = cfg.CostingHub
	}
	if params.Mode == "" {
		params.Mode = market.PriceMode(cfg.PriceMode)
	}

	hub, ok := cfg.HubByName(params.Hub)
	if !ok {
		return nil, fmt.Errorf("unknown costing hub %q", params.Hub)
	}

	resolved, err := p.Names.Resolve([]string{itemName})
	if err != nil {
		return nil, err
	}
	typeID, ok := resolved[itemName]
	if !ok {
		return nil, &names.UnresolvedNameError{Name: itemName}
	}

	// The root recipe is fetched once more here for its output quantity; the
	// repository cache makes this free for the expander's own root fetch.
	rootRec, err := p.Recipes.Recipe(typeID)
	if err != nil {
		return nil, fmt.Errorf("root recipe: %w", err)
	}
	rootAct, ok := recipes.SelectActivity(rootRec)
	if !ok {
		return nil, &recipes.NoActivityError{TypeID: typeID, Name: rootRec.Name}
	}

	materials, err := p.Expander.Expand(typeID, params.Runs, params.MaxDepth)
	if err != nil {
		return nil, err
	}

	typeIDs := make([]int32, 0, len(materials)+1)
	for _, m := range materials {
		typeIDs = append(typeIDs, m.TypeID)
	}
	typeIDs = append(typeIDs, typeID)

	quotes := p.Market.Quotes(cfg.LocationIDs(), typeIDs)
	hubQuotes := quotes[hub.LocationID]

	var outputQuote *market.Quote
	if q, ok := hubQuotes[typeID]; ok {
		outputQuote = &q
	}

	summary := costing.Calculate(materials, hubQuotes, costing.Params{
		Mode:            params.Mode,
		AcquisitionCost: decimal.NewFromFloat(params.AcquisitionCost),
		Runs:            params.Runs,
		OutputPerRun:    rootAct.ProductQuantity,
		OutputQuote:     outputQuote,
	})

	return &Report{
		ItemName:     itemName,
		TypeID:       typeID,
		Runs:         params.Runs,
		MaxDepth:     params.MaxDepth,
		OutputPerRun: rootAct.ProductQuantity,
		Materials:    materials,
		Quotes:       quotes,
		CostingHub:   hub,
		Summary:      summary,
		Advisory:     p.advisory(typeIDs, hub, hubQuotes),
	}, nil
}

// advisory computes trend signals for the report's types. Best effort:
// failures never abort a costing run, they only leave the fields absent.
func (p *Planner) advisory(typeIDs []int32, hub config.Hub, hubQuotes map[int32]market.Quote) map[int32]Advisory {
	out := make(map[int32]Advisory)
	if p.Trends == nil {
		return out
	}

	stats, err := p.Trends.Stats(typeIDs, p.Config.TrendWindowDays)
	if err != nil {
		logger.Warn("Trend", fmt.Sprintf("History unavailable: %v", err))
		return out
	}
	volumes, err := p.Trends.TradedVolumeYesterday(typeIDs, hub.LocationID)
	if err != nil {
		logger.Warn("Trend", fmt.Sprintf("Traded volume unavailable: %v", err))
		volumes = map[int32]int64{}
	}

	for _, id := range typeIDs {
		s, ok := stats[id]
		q := hubQuotes[id]
		current, _ := market.UnitPrice(q, market.SellMin)
		if !ok && current == 0 {
			continue
		}
		sold := volumes[id]
		out[id] = Advisory{
			Stats:      s,
			SoldPerDay: sold,
			FlipScore:  trend.FlipScore(trend.Volatility(s), float64(sold), float64(q.SellVolume)),
			BuyTrigger: trend.BuyTrigger(s, current),
			SellTarget: trend.SellTarget(s, current),
		}
	}
	return out
}
