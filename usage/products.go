package usage

import (
	"sort"
	"strings"

	"github.com/example/vehicore/models"
)

// MergePolicy decides how account-level purchased credits combine with
// credits reconstructed from purchase events.
type MergePolicy int

const (
	// MergeReconcile takes the larger of the account figure and the event sum,
	// so events already counted by the account summary are not counted twice.
	MergeReconcile MergePolicy = iota
	// MergeAdditive adds the event sum on top of the account figure.
	MergeAdditive
)

func (m MergePolicy) String() string {
	if m == MergeAdditive {
		return "additive"
	}
	return "reconcile"
}

// ParseMergePolicy maps a config value to a policy; unknown values reconcile.
func ParseMergePolicy(s string) MergePolicy {
	if strings.EqualFold(strings.TrimSpace(s), "additive") {
		return MergeAdditive
	}
	return MergeReconcile
}

type Policy struct {
	PurchasedMerge MergePolicy
}

// ComputeProductStats builds one row per product seen for the active key
// filter. Key-level product breakdowns take precedence; the account-level
// aggregate is the fallback and never reports used credits.
func ComputeProductStats(overview *models.UsageOverview, selectedKey *models.UsageKey, keyID string, policy Policy) []ProductCreditRow {
	if overview == nil {
		return []ProductCreditRow{}
	}
	f := Filter{KeyID: keyID}

	var keyProducts []models.KeyProduct
	if selectedKey != nil {
		keyProducts = selectedKey.Products
	} else {
		for _, k := range overview.Keys {
			keyProducts = append(keyProducts, k.Products...)
		}
	}

	names := productNames(overview, keyProducts, f)

	var remaining, purchased, used, total map[string]float64
	if len(keyProducts) > 0 {
		remaining, purchased, used, total = perKeyCredits(keyProducts)
	} else {
		remaining, purchased = accountCredits(overview, f, policy)
	}

	rows := make([]ProductCreditRow, 0, len(names))
	for _, name := range names {
		rows = append(rows, ProductCreditRow{
			Product:   name,
			Remaining: remaining[name],
			Purchased: purchased[name],
			Used:      used[name],
			Total:     total[name],
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Purchased > rows[j].Purchased
	})
	return rows
}

func perKeyCredits(keyProducts []models.KeyProduct) (remaining, purchased, used, total map[string]float64) {
	remaining = make(map[string]float64)
	purchased = make(map[string]float64)
	used = make(map[string]float64)
	total = make(map[string]float64)

	for _, p := range keyProducts {
		if p.Product == "" {
			continue
		}
		r := p.RemainingCredits.Or(0)
		u := p.UsedCredits.Or(0)

		remaining[p.Product] += r
		purchased[p.Product] += p.PurchasedCredits.Or(0)
		used[p.Product] += u
		total[p.Product] += p.TotalCredits.Or(r + u)
	}
	return remaining, purchased, used, total
}

func accountCredits(overview *models.UsageOverview, f Filter, policy Policy) (remaining, purchased map[string]float64) {
	remaining = make(map[string]float64)
	accountPurchased := make(map[string]float64)
	for _, p := range overview.Products {
		if p.Product == "" {
			continue
		}
		if p.RemainingCredits.Valid {
			remaining[p.Product] = p.RemainingCredits.Value
		}
		if p.PurchasedCredits.Valid {
			accountPurchased[p.Product] = p.PurchasedCredits.Value
		}
	}

	events := make(map[string]float64)
	for _, pu := range overview.Purchases {
		credits := pu.CreditsGranted.Or(0)
		if pu.Product == "" || credits <= 0 || !f.matchesKey(pu) {
			continue
		}
		events[pu.Product] += credits
	}

	purchased = make(map[string]float64, len(accountPurchased)+len(events))
	for name, v := range accountPurchased {
		purchased[name] = v
	}
	for name, sum := range events {
		switch policy.PurchasedMerge {
		case MergeAdditive:
			purchased[name] += sum
		default:
			if sum > purchased[name] {
				purchased[name] = sum
			}
		}
	}
	return remaining, purchased
}

// productNames is the ordered union of account products, key products and
// products of purchases matching the key filter.
func productNames(overview *models.UsageOverview, keyProducts []models.KeyProduct, f Filter) []string {
	seen := make(map[string]struct{})
	var names []string
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	for _, p := range overview.Products {
		add(p.Product)
	}
	for _, p := range keyProducts {
		add(p.Product)
	}
	for _, p := range overview.Purchases {
		if f.matchesKey(p) {
			add(p.Product)
		}
	}
	return names
}
