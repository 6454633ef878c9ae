// Package usage derives chartable and tabular credit statistics from a usage
// overview payload and the current filter. Every function is pure and total:
// malformed or missing fields never cause an error or a panic.
package usage

import (
	"sort"
	"time"

	"github.com/example/vehicore/models"
)

// AllKeys selects purchases and credits across every key.
const AllKeys = "all"

// Filter is the UI filter state. From and To are calendar dates (YYYY-MM-DD)
// without a zone; To is inclusive through 23:59:59.999 in Location.
type Filter struct {
	From     string
	To       string
	KeyID    string
	Location *time.Location
}

func (f Filter) location() *time.Location {
	if f.Location == nil {
		return time.Local
	}
	return f.Location
}

func (f Filter) allKeys() bool {
	return f.KeyID == "" || f.KeyID == AllKeys
}

func (f Filter) matchesKey(p models.Purchase) bool {
	return f.allKeys() || p.APIKeyID == f.KeyID
}

type SeriesPoint struct {
	Date    string  `json:"date"`
	Credits float64 `json:"credits"`
}

type ProductCreditRow struct {
	Product   string  `json:"product"`
	Remaining float64 `json:"remaining"`
	Purchased float64 `json:"purchased"`
	Used      float64 `json:"used"`
	Total     float64 `json:"total"`
}

type Totals struct {
	TotalPurchasedCredits float64 `json:"totalPurchasedCredits"`
	TotalRemainingCredits float64 `json:"totalRemainingCredits"`
	PurchasesCount        int     `json:"purchasesCount"`
	KeysCount             int     `json:"keysCount"`
}

// SelectPurchasesInRange keeps the purchases of the selected key whose
// effective timestamp falls inside the filter range. When a bound cannot be
// parsed at all the full purchase list is returned unfiltered.
func SelectPurchasesInRange(overview *models.UsageOverview, f Filter) []models.Purchase {
	if overview == nil {
		return []models.Purchase{}
	}
	loc := f.location()

	from, okFrom := parseBound(f.From, loc)
	to, okTo := parseBound(f.To, loc)
	if !okFrom || !okTo {
		return append([]models.Purchase{}, overview.Purchases...)
	}
	end := endOfDay(to, loc)

	out := make([]models.Purchase, 0, len(overview.Purchases))
	for _, p := range overview.Purchases {
		if !f.matchesKey(p) {
			continue
		}
		ts, ok := parseDateTime(p.EffectiveTime(), loc)
		if !ok {
			continue
		}
		if ts.Before(from) || ts.After(end) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// BuildPurchaseSeries buckets credits granted per day. Calendar bounds give a
// dense series with one row per day of the range; anything else gives one row
// per day that has purchases, sorted by date.
func BuildPurchaseSeries(purchases []models.Purchase, f Filter) []SeriesPoint {
	loc := f.location()

	sums := make(map[string]float64)
	for _, p := range purchases {
		credits := p.CreditsGranted.Or(0)
		if credits <= 0 {
			continue
		}
		ts, ok := parseDateTime(p.EffectiveTime(), loc)
		if !ok {
			continue
		}
		sums[dayKey(ts, loc)] += credits
	}

	from, okFrom := parseCalendarDay(f.From)
	to, okTo := parseCalendarDay(f.To)
	if !okFrom || !okTo {
		days := make([]string, 0, len(sums))
		for d := range sums {
			days = append(days, d)
		}
		sort.Strings(days)

		out := make([]SeriesPoint, 0, len(days))
		for _, d := range days {
			out = append(out, SeriesPoint{Date: d, Credits: sums[d]})
		}
		return out
	}

	// Walk calendar days in UTC; loc only decides which day a purchase lands on.
	out := []SeriesPoint{}
	for cursor := from; !cursor.After(to); cursor = cursor.AddDate(0, 0, 1) {
		key := cursor.Format(dayLayout)
		out = append(out, SeriesPoint{Date: key, Credits: sums[key]})
	}
	return out
}

// TotalCredits sums the credits of a series.
func TotalCredits(series []SeriesPoint) float64 {
	total := 0.0
	for _, p := range series {
		total += p.Credits
	}
	return total
}

// ComputeTotals aggregates product rows, the in-range purchase count and the
// key count. The key count ignores the date filter.
func ComputeTotals(rows []ProductCreditRow, purchasesInRange []models.Purchase, overview *models.UsageOverview) Totals {
	t := Totals{PurchasesCount: len(purchasesInRange)}
	for _, r := range rows {
		t.TotalPurchasedCredits += r.Purchased
		t.TotalRemainingCredits += r.Remaining
	}
	if overview != nil {
		for _, k := range overview.Keys {
			if !k.IsRevoked() {
				t.KeysCount++
			}
		}
	}
	return t
}

// HasPurchaseEvidence reports whether the overview shows any credits or purchases.
func HasPurchaseEvidence(overview *models.UsageOverview) bool {
	if overview == nil {
		return false
	}
	if len(overview.Purchases) > 0 {
		return true
	}
	for _, p := range overview.Products {
		if p.RemainingCredits.Or(0) > 0 || p.PurchasedCredits.Or(0) > 0 {
			return true
		}
	}
	return false
}
