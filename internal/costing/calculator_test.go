package costing

import (
	"testing"

	"github.com/shopspring/decimal"

	"eve-craftcost/internal/expand"
	"eve-craftcost/internal/market"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestCalculate_MaterialCostAndDerived(t *testing.T) {
	materials := []expand.Material{
		{TypeID: 34, Name: "Tritanium", Quantity: 1000},
		{TypeID: 35, Name: "Pyerite", Quantity: 200},
	}
	quotes := map[int32]market.Quote{
		34: {SellMin: 4.5, HasSell: true},
		35: {SellMin: 11.0, HasSell: true},
	}
	out := market.Quote{SellMin: 10000, HasSell: true}

	s := Calculate(materials, quotes, Params{
		Mode:            market.SellMin,
		AcquisitionCost: dec("300"),
		Runs:            2,
		OutputPerRun:    1,
		OutputQuote:     &out,
	})

	if want := dec("6700"); !s.MaterialCost.Equal(want) {
		t.Errorf("MaterialCost = %s, want %s", s.MaterialCost, want)
	}
	if want := dec("7000"); !s.AllInCost.Equal(want) {
		t.Errorf("AllInCost = %s, want %s", s.AllInCost, want)
	}
	if want := dec("3500"); !s.CostPerRun.Equal(want) {
		t.Errorf("CostPerRun = %s, want %s", s.CostPerRun, want)
	}
	if want := dec("3500"); !s.CostPerUnit.Equal(want) {
		t.Errorf("CostPerUnit = %s, want %s", s.CostPerUnit, want)
	}
	if !s.RevenueKnown {
		t.Fatal("revenue should be known")
	}
	if want := dec("20000"); !s.Revenue.Equal(want) {
		t.Errorf("Revenue = %s, want %s", s.Revenue, want)
	}
	if want := dec("13000"); !s.Profit.Equal(want) {
		t.Errorf("Profit = %s, want %s", s.Profit, want)
	}
}

func TestCalculate_UnknownPricesReportedNotSummed(t *testing.T) {
	materials := []expand.Material{
		{TypeID: 34, Name: "Tritanium", Quantity: 100},
		{TypeID: 999, Name: "Obscure Module", Quantity: 5},
	}
	quotes := map[int32]market.Quote{
		34: {SellMin: 4.0, HasSell: true},
		// 999 has no quote at all
	}

	s := Calculate(materials, quotes, Params{Mode: market.SellMin, Runs: 1, OutputPerRun: 1})

	if want := dec("400"); !s.MaterialCost.Equal(want) {
		t.Errorf("MaterialCost = %s, want %s (unknown skipped)", s.MaterialCost, want)
	}
	if s.UnpricedCount != 1 {
		t.Errorf("UnpricedCount = %d, want 1", s.UnpricedCount)
	}
	if len(s.Lines) != 2 {
		t.Fatalf("Lines = %d, want unpriced line retained", len(s.Lines))
	}
	last := s.Lines[len(s.Lines)-1]
	if last.PriceKnown || last.TypeID != 999 {
		t.Errorf("unpriced line should sort last: %+v", last)
	}
}

func TestCalculate_OutputPerRunGuard(t *testing.T) {
	s := Calculate(nil, nil, Params{Mode: market.SellMin, Runs: 0, OutputPerRun: 0, AcquisitionCost: dec("100")})
	// runs and output clamp to 1: no division by zero.
	if want := dec("100"); !s.CostPerRun.Equal(want) || !s.CostPerUnit.Equal(want) {
		t.Errorf("CostPerRun/CostPerUnit = %s/%s, want 100/100", s.CostPerRun, s.CostPerUnit)
	}
}

func TestCalculate_PerUnitUsesTotalOutput(t *testing.T) {
	materials := []expand.Material{{TypeID: 34, Name: "Tritanium", Quantity: 100}}
	quotes := map[int32]market.Quote{34: {SellMin: 1.0, HasSell: true}}

	s := Calculate(materials, quotes, Params{Mode: market.SellMin, Runs: 2, OutputPerRun: 5})
	if want := dec("10"); !s.CostPerUnit.Equal(want) {
		t.Errorf("CostPerUnit = %s, want 100/(2*5)", s.CostPerUnit)
	}
}

func TestCalculate_NoOutputQuoteMeansNoRevenue(t *testing.T) {
	s := Calculate(nil, nil, Params{Mode: market.SellMin, Runs: 1, OutputPerRun: 1})
	if s.RevenueKnown {
		t.Error("revenue must stay unknown without an output quote")
	}

	// A quote lacking the relevant side is still unknown.
	q := market.Quote{BuyMax: 5, HasBuy: true}
	s = Calculate(nil, nil, Params{Mode: market.SellMin, Runs: 1, OutputPerRun: 1, OutputQuote: &q})
	if s.RevenueKnown {
		t.Error("sell_min revenue with buy-only quote must stay unknown")
	}
}

func TestCalculate_BuyMaxMode(t *testing.T) {
	materials := []expand.Material{{TypeID: 34, Name: "Tritanium", Quantity: 10}}
	quotes := map[int32]market.Quote{34: {SellMin: 5, BuyMax: 4, HasSell: true, HasBuy: true}}

	s := Calculate(materials, quotes, Params{Mode: market.BuyMax, Runs: 1, OutputPerRun: 1})
	if want := dec("40"); !s.MaterialCost.Equal(want) {
		t.Errorf("MaterialCost = %s, want buy_max pricing 40", s.MaterialCost)
	}
}
