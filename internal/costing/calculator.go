package costing

import (
	"sort"

	"github.com/shopspring/decimal"

	"eve-craftcost/internal/expand"
	"eve-craftcost/internal/market"
)

// Line is one raw material priced at the costing location. Unpriced lines
// stay in the list with PriceKnown=false; they contribute nothing to the
// totals but are never silently dropped.
type Line struct {
	TypeID     int32
	Name       string
	Quantity   int64
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	PriceKnown bool
}

// Summary is the financial picture of one costing run.
type Summary struct {
	Lines         []Line
	UnpricedCount int

	MaterialCost    decimal.Decimal
	AcquisitionCost decimal.Decimal
	AllInCost       decimal.Decimal
	CostPerRun      decimal.Decimal
	CostPerUnit     decimal.Decimal

	Runs         int64
	OutputPerRun int64

	Revenue      decimal.Decimal
	Profit       decimal.Decimal
	RevenueKnown bool
}

// Params are the manual inputs to a costing run.
type Params struct {
	Mode            market.PriceMode
	AcquisitionCost decimal.Decimal
	Runs            int64
	OutputPerRun    int64
	OutputQuote     *market.Quote // nil when the product has no market data
}

// Calculate combines expanded raw totals with per-unit prices at the chosen
// costing location.
func Calculate(materials []expand.Material, quotes map[int32]market.Quote, p Params) Summary {
	if p.Runs <= 0 {
		p.Runs = 1
	}
	if p.OutputPerRun <= 0 {
		p.OutputPerRun = 1
	}

	s := Summary{
		AcquisitionCost: p.AcquisitionCost,
		Runs:            p.Runs,
		OutputPerRun:    p.OutputPerRun,
	}

	for _, m := range materials {
		l := Line{TypeID: m.TypeID, Name: m.Name, Quantity: m.Quantity}
		if price, ok := market.UnitPrice(quotes[m.TypeID], p.Mode); ok {
			l.UnitPrice = decimal.NewFromFloat(price)
			l.TotalPrice = l.UnitPrice.Mul(decimal.NewFromInt(m.Quantity))
			l.PriceKnown = true
			s.MaterialCost = s.MaterialCost.Add(l.TotalPrice)
		} else {
			s.UnpricedCount++
		}
		s.Lines = append(s.Lines, l)
	}

	// Most expensive first; unpriced lines sink to the bottom.
	sort.Slice(s.Lines, func(i, j int) bool {
		if s.Lines[i].PriceKnown != s.Lines[j].PriceKnown {
			return s.Lines[i].PriceKnown
		}
		return s.Lines[i].TotalPrice.GreaterThan(s.Lines[j].TotalPrice)
	})

	s.AllInCost = s.MaterialCost.Add(s.AcquisitionCost)
	s.CostPerRun = s.AllInCost.Div(decimal.NewFromInt(p.Runs))

	units := p.Runs * p.OutputPerRun
	if units < 1 {
		units = 1
	}
	s.CostPerUnit = s.AllInCost.Div(decimal.NewFromInt(units))

	if p.OutputQuote != nil {
		if price, ok := market.UnitPrice(*p.OutputQuote, p.Mode); ok {
			s.Revenue = decimal.NewFromFloat(price).Mul(decimal.NewFromInt(units))
			s.Profit = s.Revenue.Sub(s.AllInCost)
			s.RevenueKnown = true
		}
	}
	return s
}
