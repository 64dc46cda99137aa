package config

// Hub is a trading location at which quotes are fetched independently.
type Hub struct {
	Name       string `json:"name"`
	LocationID int64  `json:"location_id"`
}

// Config holds application settings (in-memory representation).
// Persistence is handled by internal/db package.
type Config struct {
	Hubs            []Hub   `json:"hubs"`
	CostingHub      string  `json:"costing_hub"`       // hub used for the cost summary
	PriceMode       string  `json:"price_mode"`        // sell_min | buy_max
	RegionID        int32   `json:"region_id"`         // region for price history
	Runs            int64   `json:"runs"`              // default run count
	MaxDepth        int     `json:"max_depth"`         // default expansion depth
	AcquisitionCost float64 `json:"acquisition_cost"`  // manual contract/acquisition cost
	TrendWindowDays int     `json:"trend_window_days"` // history window for trend stats
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Hubs: []Hub{
			{Name: "Jita", LocationID: 60003760},
			{Name: "Amarr", LocationID: 60008494},
			{Name: "Dodixie", LocationID: 60011866},
			{Name: "Rens", LocationID: 60004588},
			{Name: "Hek", LocationID: 60005686},
		},
		CostingHub:      "Jita",
		PriceMode:       "sell_min",
		RegionID:        10000002,
		Runs:            1,
		MaxDepth:        3,
		TrendWindowDays: 7,
	}
}

// HubByName returns the hub with the given name, or false.
func (c *Config) HubByName(name string) (Hub, bool) {
	for _, h := range c.Hubs {
		if h.Name == name {
			return h, true
		}
	}
	return Hub{}, false
}

// LocationIDs returns the location IDs of all configured hubs.
func (c *Config) LocationIDs() []int64 {
	ids := make([]int64, 0, len(c.Hubs))
	for _, h := range c.Hubs {
		ids = append(ids, h.LocationID)
	}
	return ids
}
