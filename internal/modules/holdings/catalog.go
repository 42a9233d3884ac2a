// Package holdings provides the static fund catalog and instrument selection.
package holdings

import "github.com/aristath/microinvest/internal/modules/allocation"

// Holding is static reference data for one fund instrument.
// ExpenseRatio is the annual expense ratio in percent.
type Holding struct {
	Name         string  `json:"name"`
	Ticker       string  `json:"ticker"`
	ExpenseRatio float64 `json:"expense_ratio"`
	ESG          bool    `json:"esg"`
}

// catalog is the fixed demo universe, keyed by asset class.
// Never mutated at runtime; Catalog returns copies.
var catalog = map[string][]Holding{
	allocation.AssetEquity: {
		{Name: "Acme Global Index A", Ticker: "ACXG", ExpenseRatio: 0.12, ESG: false},
		{Name: "NordSea Equity Core", Ticker: "NSEA", ExpenseRatio: 0.15, ESG: false},
		{Name: "Altmeri Renewables NV", Ticker: "ALTR", ExpenseRatio: 0.18, ESG: true},
		{Name: "Lowlands Small Cap", Ticker: "LWSC", ExpenseRatio: 0.20, ESG: false},
		{Name: "Green World Leaders", Ticker: "GRWL", ExpenseRatio: 0.10, ESG: true},
	},
	allocation.AssetBonds: {
		{Name: "Benelux Gov Bond 5-10", Ticker: "BLGB", ExpenseRatio: 0.08, ESG: false},
		{Name: "Euro Investment Grade", Ticker: "EIGF", ExpenseRatio: 0.10, ESG: false},
		{Name: "Green Municipal Bond", Ticker: "GRMB", ExpenseRatio: 0.09, ESG: true},
		{Name: "Climate Bond Europe", Ticker: "CLME", ExpenseRatio: 0.07, ESG: true},
	},
	allocation.AssetCash: {
		{Name: "Stable Reserve EUR", Ticker: "STBR", ExpenseRatio: 0.05, ESG: false},
		{Name: "Treasury Liquidity", Ticker: "TLQD", ExpenseRatio: 0.04, ESG: false},
	},
}

// Catalog returns a copy of the full instrument universe keyed by bucket.
func Catalog() map[string][]Holding {
	out := make(map[string][]Holding, len(catalog))
	for bucket, instruments := range catalog {
		list := make([]Holding, len(instruments))
		copy(list, instruments)
		out[bucket] = list
	}
	return out
}

// Bucket returns a copy of the instruments for one asset class.
func Bucket(name string) []Holding {
	instruments := catalog[name]
	list := make([]Holding, len(instruments))
	copy(list, instruments)
	return list
}

// MaxExpenseRatio returns the highest expense ratio in the catalog, in percent.
func MaxExpenseRatio() float64 {
	maxER := 0.0
	for _, instruments := range catalog {
		for _, h := range instruments {
			if h.ExpenseRatio > maxER {
				maxER = h.ExpenseRatio
			}
		}
	}
	return maxER
}
