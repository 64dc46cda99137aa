package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	"eve-craftcost/internal/config"
	"eve-craftcost/internal/db"
	"eve-craftcost/internal/expand"
	"eve-craftcost/internal/fetch"
	"eve-craftcost/internal/logger"
	"eve-craftcost/internal/market"
	"eve-craftcost/internal/names"
	"eve-craftcost/internal/recipes"
	"eve-craftcost/internal/report"
	"eve-craftcost/internal/throttle"
	"eve-craftcost/internal/trend"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "eve-craftcost",
		Usage:   "expand crafting recipes into raw materials and price them across trade hubs",
		Version: version,
		Commands: []*cli.Command{
			costCommand(),
			trendCommand(),
			resolveCommand(),
			configCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		logger.Error("CLI", err.Error())
		os.Exit(1)
	}
}

// wiring holds the assembled component graph for one invocation.
type wiring struct {
	db      *db.DB
	cfg     *config.Config
	planner *report.Planner
	trends  *trend.Analyzer
	names   *names.Resolver
}

func wire() (*wiring, error) {
	logger.Banner(version)

	database, err := db.Open()
	if err != nil {
		return nil, err
	}
	cfg := database.LoadConfig()

	client := fetch.NewClient()
	gateway := throttle.NewGateway(client)

	resolver := names.NewResolver(client, database)
	repo := recipes.NewRepository(client)
	analyzer := trend.NewAnalyzer(gateway, cfg.RegionID)

	planner := &report.Planner{
		Names:    resolver,
		Recipes:  repo,
		Expander: expand.NewExpander(repo),
		Market:   market.NewAggregator(client),
		Trends:   analyzer,
		Config:   cfg,
	}
	return &wiring{db: database, cfg: cfg, planner: planner, trends: analyzer, names: resolver}, nil
}

func costCommand() *cli.Command {
	return &cli.Command{
		Name:      "cost",
		Usage:     "compute the full material cost of producing an item",
		ArgsUsage: "<item name>",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "runs", Usage: "number of production runs"},
			&cli.IntFlag{Name: "depth", Usage: "maximum expansion depth"},
			&cli.StringFlag{Name: "hub", Usage: "costing hub (Jita, Amarr, ...)"},
			&cli.StringFlag{Name: "mode", Usage: "price mode: sell_min or buy_max"},
			&cli.Float64Flag{Name: "acquisition", Usage: "manual contract/acquisition cost"},
		},
		Action: func(c *cli.Context) error {
			item := c.Args().First()
			if item == "" {
				return fmt.Errorf("item name required")
			}
			w, err := wire()
			if err != nil {
				return err
			}
			defer w.db.Close()

			rep, err := w.planner.Cost(item, report.Params{
				Runs:            c.Int64("runs"),
				MaxDepth:        c.Int("depth"),
				Hub:             c.String("hub"),
				Mode:            market.PriceMode(c.String("mode")),
				AcquisitionCost: c.Float64("acquisition"),
			})
			if err != nil {
				return err
			}
			printReport(rep)
			return nil
		},
	}
}

func trendCommand() *cli.Command {
	return &cli.Command{
		Name:      "trend",
		Usage:     "show 7-day price statistics and flip signals for items",
		ArgsUsage: "<item name>...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("at least one item name required")
			}
			w, err := wire()
			if err != nil {
				return err
			}
			defer w.db.Close()

			resolved, err := w.names.Resolve(c.Args().Slice())
			if err != nil {
				return err
			}
			byID := make(map[int32]string, len(resolved))
			ids := make([]int32, 0, len(resolved))
			for name, id := range resolved {
				byID[id] = name
				ids = append(ids, id)
			}
			for _, name := range c.Args().Slice() {
				if _, ok := resolved[name]; !ok {
					logger.Warn("Names", (&names.UnresolvedNameError{Name: name}).Error())
				}
			}

			stats, err := w.trends.Stats(ids, w.cfg.TrendWindowDays)
			if err != nil {
				return err
			}

			logger.Section("Price trends")
			fmt.Printf("%-30s %12s %12s %12s %8s\n", "Item", "Min", "Max", "Avg", "Change")
			sort.Slice(ids, func(i, j int) bool { return byID[ids[i]] < byID[ids[j]] })
			for _, id := range ids {
				s, ok := stats[id]
				if !ok {
					fmt.Printf("%-30s %12s\n", byID[id], "no history")
					continue
				}
				change := "n/a"
				if s.ChangeDefined {
					change = fmt.Sprintf("%+.1f%%", s.PercentChange)
				}
				fmt.Printf("%-30s %12.2f %12.2f %12.2f %8s\n", byID[id], s.Min, s.Max, s.Average, change)
			}
			return nil
		},
	}
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "resolve item names to type IDs",
		ArgsUsage: "<item name>...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("at least one item name required")
			}
			w, err := wire()
			if err != nil {
				return err
			}
			defer w.db.Close()

			resolved, err := w.names.Resolve(c.Args().Slice())
			if err != nil {
				return err
			}
			for _, name := range c.Args().Slice() {
				if id, ok := resolved[name]; ok {
					fmt.Printf("%-40s %d\n", name, id)
				} else {
					fmt.Printf("%-40s %s\n", name, "unresolved")
				}
			}
			return nil
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "show or update persisted defaults",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "hub", Usage: "default costing hub"},
			&cli.StringFlag{Name: "mode", Usage: "default price mode: sell_min or buy_max"},
			&cli.Int64Flag{Name: "runs", Usage: "default run count"},
			&cli.IntFlag{Name: "depth", Usage: "default expansion depth"},
		},
		Action: func(c *cli.Context) error {
			w, err := wire()
			if err != nil {
				return err
			}
			defer w.db.Close()

			changed := false
			if v := c.String("hub"); v != "" {
				if _, ok := w.cfg.HubByName(v); !ok {
					return fmt.Errorf("unknown hub %q", v)
				}
				w.cfg.CostingHub = v
				changed = true
			}
			if v := c.String("mode"); v != "" {
				if v != string(market.SellMin) && v != string(market.BuyMax) {
					return fmt.Errorf("unknown price mode %q", v)
				}
				w.cfg.PriceMode = v
				changed = true
			}
			if v := c.Int64("runs"); v > 0 {
				w.cfg.Runs = v
				changed = true
			}
			if v := c.Int("depth"); v > 0 {
				w.cfg.MaxDepth = v
				changed = true
			}
			if changed {
				if err := w.db.SaveConfig(w.cfg); err != nil {
					return err
				}
				logger.Success("Config", "Saved")
			}

			logger.Section("Settings")
			logger.Stats("Costing hub", w.cfg.CostingHub)
			logger.Stats("Price mode", w.cfg.PriceMode)
			logger.Stats("Runs", w.cfg.Runs)
			logger.Stats("Max depth", w.cfg.MaxDepth)
			logger.Stats("History region", w.cfg.RegionID)
			for _, h := range w.cfg.Hubs {
				logger.Stats("Hub "+h.Name, h.LocationID)
			}
			return nil
		},
	}
}

func printReport(rep *report.Report) {
	logger.Section(fmt.Sprintf("%s x%d runs (depth %d) @ %s", rep.ItemName, rep.Runs, rep.MaxDepth, rep.CostingHub.Name))

	fmt.Printf("%-34s %14s %14s %16s\n", "Material", "Quantity", "Unit", "Total")
	for _, l := range rep.Summary.Lines {
		if l.PriceKnown {
			fmt.Printf("%-34s %14d %14s %16s\n", l.Name, l.Quantity, l.UnitPrice.StringFixed(2), l.TotalPrice.StringFixed(2))
		} else {
			fmt.Printf("%-34s %14d %14s %16s\n", l.Name, l.Quantity, "unknown", "-")
		}
	}
	if rep.Summary.UnpricedCount > 0 {
		logger.Warn("Cost", fmt.Sprintf("%d material(s) without a known price at %s", rep.Summary.UnpricedCount, rep.CostingHub.Name))
	}

	logger.Section("Summary")
	logger.Stats("Material cost", rep.Summary.MaterialCost.StringFixed(2))
	logger.Stats("Acquisition cost", rep.Summary.AcquisitionCost.StringFixed(2))
	logger.Stats("All-in cost", rep.Summary.AllInCost.StringFixed(2))
	logger.Stats("Cost per run", rep.Summary.CostPerRun.StringFixed(2))
	logger.Stats("Cost per unit", rep.Summary.CostPerUnit.StringFixed(2))
	if rep.Summary.RevenueKnown {
		logger.Stats("Revenue", rep.Summary.Revenue.StringFixed(2))
		logger.Stats("Profit", rep.Summary.Profit.StringFixed(2))
	} else {
		logger.Stats("Revenue", "unknown (no market data for product)")
	}

	if adv, ok := rep.Advisory[rep.TypeID]; ok {
		logger.Section("Advisory")
		logger.Stats("Flip score", fmt.Sprintf("%.3f", adv.FlipScore))
		logger.Stats("Sold yesterday", adv.SoldPerDay)
		logger.Stats("Buy trigger", fmt.Sprintf("%.2f", adv.BuyTrigger))
		logger.Stats("Sell target", fmt.Sprintf("%.2f", adv.SellTarget))
	}
}
