package market

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// hubGetter serves one canned aggregate document per station parameter and
// can fail selected stations.
type hubGetter struct {
	docs map[string]string // station id -> JSON body
	fail map[string]bool
}

func (h *hubGetter) GetJSON(url string, ttl time.Duration, dst any) error {
	for station, doc := range h.docs {
		if strings.Contains(url, "station="+station+"&") {
			if h.fail[station] {
				return errors.New("hub unavailable")
			}
			return json.Unmarshal([]byte(doc), dst)
		}
	}
	return errors.New("unknown station")
}

const jitaDoc = `{
	"34": {"buy": {"max": 4.1, "volume": 1000000}, "sell": {"min": 4.5, "volume": 2000000}},
	"35": {"buy": {"max": 0, "volume": 0}, "sell": {"min": 11.2, "volume": 50000}}
}`

const amarrDoc = `{
	"34": {"buy": {"max": 3.9, "volume": 800}, "sell": {"min": 0, "volume": 0}}
}`

func TestQuotes_PerLocation(t *testing.T) {
	g := &hubGetter{docs: map[string]string{"60003760": jitaDoc, "60008494": amarrDoc}}
	a := NewAggregator(g)

	got := a.Quotes([]int64{60003760, 60008494}, []int32{34, 35})

	jita := got[60003760]
	if q := jita[34]; !q.HasSell || q.SellMin != 4.5 || !q.HasBuy || q.BuyMax != 4.1 {
		t.Errorf("jita 34 = %+v", q)
	}
	if q := jita[35]; q.HasBuy || !q.HasSell {
		t.Errorf("jita 35 = %+v, want unknown buy side", q)
	}
	amarr := got[60008494]
	if q := amarr[34]; q.HasSell || !q.HasBuy {
		t.Errorf("amarr 34 = %+v, want unknown sell side", q)
	}
}

func TestQuotes_FailedLocationIsolated(t *testing.T) {
	g := &hubGetter{
		docs: map[string]string{"60003760": jitaDoc, "60008494": amarrDoc},
		fail: map[string]bool{"60008494": true},
	}
	a := NewAggregator(g)

	got := a.Quotes([]int64{60003760, 60008494}, []int32{34})
	if len(got[60003760]) == 0 {
		t.Error("healthy location should still return quotes")
	}
	if len(got[60008494]) != 0 {
		t.Errorf("failed location = %v, want empty", got[60008494])
	}
}

func TestUnitPrice_UnknownPropagates(t *testing.T) {
	q := Quote{SellMin: 4.5, HasSell: true}

	if p, ok := UnitPrice(q, SellMin); !ok || p != 4.5 {
		t.Errorf("sell_min = %v, %v", p, ok)
	}
	if _, ok := UnitPrice(q, BuyMax); ok {
		t.Error("buy_max on quote without buy side must be unknown, not zero")
	}
}

func TestJoinIDs_StableOrder(t *testing.T) {
	a := joinIDs([]int32{35, 34, 36})
	b := joinIDs([]int32{36, 35, 34})
	if a != b || a != "34,35,36" {
		t.Errorf("joinIDs = %q / %q", a, b)
	}
}
