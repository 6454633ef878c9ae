package usage

import (
	"github.com/example/vehicore/models"
)

type KeyOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// View bundles every derived value the usage dashboard renders.
type View struct {
	From                string             `json:"from"`
	To                  string             `json:"to"`
	SelectedKeyID       string             `json:"selectedKeyId"`
	KeyOptions          []KeyOption        `json:"keyOptions"`
	PurchasesInRange    []models.Purchase  `json:"purchasesInRange"`
	Series              []SeriesPoint      `json:"purchasesChartData"`
	TotalCreditsInRange float64            `json:"totalCreditsInRange"`
	ProductStats        []ProductCreditRow `json:"productStats"`
	Totals              Totals             `json:"totals"`
}

// KeyOptions lists selectable keys; keys without an identifier are skipped.
func KeyOptions(overview *models.UsageOverview) []KeyOption {
	out := []KeyOption{}
	if overview == nil {
		return out
	}
	for _, k := range overview.Keys {
		id := k.Identifier()
		if id == "" {
			continue
		}
		label := k.Name
		if label == "" {
			label = "Unnamed key"
		}
		if k.Prefix != "" {
			label += " (" + k.Prefix + "...)"
		}
		out = append(out, KeyOption{ID: id, Label: label})
	}
	return out
}

// ResolveKeyID narrows "all" to the only key when exactly one exists.
func ResolveKeyID(options []KeyOption, selected string) string {
	if selected == "" {
		selected = AllKeys
	}
	if selected == AllKeys && len(options) == 1 {
		return options[0].ID
	}
	return selected
}

// FindKey returns the overview key with the given id, or nil for "all" and unknown ids.
func FindKey(overview *models.UsageOverview, keyID string) *models.UsageKey {
	if overview == nil || keyID == "" || keyID == AllKeys {
		return nil
	}
	for i := range overview.Keys {
		if overview.Keys[i].Identifier() == keyID {
			return &overview.Keys[i]
		}
	}
	return nil
}

// Derive computes the full dashboard view from scratch.
func Derive(overview *models.UsageOverview, f Filter, policy Policy) View {
	options := KeyOptions(overview)
	f.KeyID = ResolveKeyID(options, f.KeyID)
	selected := FindKey(overview, f.KeyID)

	purchases := SelectPurchasesInRange(overview, f)
	series := BuildPurchaseSeries(purchases, f)
	rows := ComputeProductStats(overview, selected, f.KeyID, policy)

	return View{
		From:                f.From,
		To:                  f.To,
		SelectedKeyID:       f.KeyID,
		KeyOptions:          options,
		PurchasesInRange:    purchases,
		Series:              series,
		TotalCreditsInRange: TotalCredits(series),
		ProductStats:        rows,
		Totals:              ComputeTotals(rows, purchases, overview),
	}
}
