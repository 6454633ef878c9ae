package usage

import (
	"encoding/json"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vehicore/models"
)

func scenarioOverview() *models.UsageOverview {
	return &models.UsageOverview{
		Purchases: []models.Purchase{
			{APIKeyID: "a", Product: "ocr", CreditsGranted: models.Num(100), PaidAt: "2024-01-05T10:00:00Z"},
			{APIKeyID: "b", Product: "ocr", CreditsGranted: models.Num(50), PaidAt: "2024-01-07T00:00:00Z"},
		},
	}
}

func TestDerive_AllKeysScenario(t *testing.T) {
	f := Filter{From: "2024-01-04", To: "2024-01-07", KeyID: AllKeys, Location: time.UTC}
	view := Derive(scenarioOverview(), f, Policy{})

	assert.Equal(t, []SeriesPoint{
		{Date: "2024-01-04", Credits: 0},
		{Date: "2024-01-05", Credits: 100},
		{Date: "2024-01-06", Credits: 0},
		{Date: "2024-01-07", Credits: 50},
	}, view.Series)
	assert.Equal(t, 150.0, view.TotalCreditsInRange)
	assert.Equal(t, 2, view.Totals.PurchasesCount)
}

func TestDerive_SingleKeyScenario(t *testing.T) {
	f := Filter{From: "2024-01-04", To: "2024-01-07", KeyID: "a", Location: time.UTC}
	view := Derive(scenarioOverview(), f, Policy{})

	require.Len(t, view.PurchasesInRange, 1)
	assert.Equal(t, "a", view.PurchasesInRange[0].APIKeyID)
	for _, p := range view.Series {
		if p.Date == "2024-01-05" {
			assert.Equal(t, 100.0, p.Credits)
		} else {
			assert.Zero(t, p.Credits, p.Date)
		}
	}
	assert.Equal(t, 100.0, view.TotalCreditsInRange)
}

func TestBuildPurchaseSeries_DenseInvariant(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		rows     int
	}{
		{"single day", "2024-03-01", "2024-03-01", 1},
		{"leap february", "2024-02-27", "2024-03-02", 5},
		{"month rollover", "2023-12-30", "2024-01-02", 4},
		{"inverted", "2024-01-05", "2024-01-01", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := BuildPurchaseSeries(nil, Filter{From: tt.from, To: tt.to, Location: time.UTC})
			require.Len(t, series, tt.rows)
			for i := 1; i < len(series); i++ {
				assert.Less(t, series[i-1].Date, series[i].Date)
			}
		})
	}
}

func TestDerive_SkippedMidnight(t *testing.T) {
	// DST began at midnight on 2018-11-04; local clocks went from 23:59 to 01:00.
	saoPaulo, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	overview := &models.UsageOverview{
		Purchases: []models.Purchase{
			{APIKeyID: "a", Product: "ocr", CreditsGranted: models.Num(10), PaidAt: "2018-11-03T23:30:00-03:00"},
			{APIKeyID: "a", Product: "ocr", CreditsGranted: models.Num(25), PaidAt: "2018-11-04T01:30:00-02:00"},
			{APIKeyID: "a", Product: "ocr", CreditsGranted: models.Num(40), PaidAt: "2018-11-06T15:00:00-02:00"},
		},
	}

	view := Derive(overview, Filter{From: "2018-11-03", To: "2018-11-06", KeyID: AllKeys, Location: saoPaulo}, Policy{})
	assert.Equal(t, []SeriesPoint{
		{Date: "2018-11-03", Credits: 10},
		{Date: "2018-11-04", Credits: 25},
		{Date: "2018-11-05", Credits: 0},
		{Date: "2018-11-06", Credits: 40},
	}, view.Series)
	assert.Len(t, view.PurchasesInRange, 3)
	assert.Equal(t, 75.0, view.TotalCreditsInRange)

	days, ok := RangeDays(Filter{From: "2018-11-03", To: "2018-11-06", Location: saoPaulo})
	require.True(t, ok)
	assert.Equal(t, len(view.Series), days)

	view = Derive(overview, Filter{From: "2018-11-04", To: "2018-11-06", KeyID: AllKeys, Location: saoPaulo}, Policy{})
	assert.Len(t, view.PurchasesInRange, 2)
	require.Len(t, view.Series, 3)
	assert.Equal(t, "2018-11-04", view.Series[0].Date)
	assert.Equal(t, 65.0, view.TotalCreditsInRange)

	from, to := DefaultRange(time.Date(2018, 11, 4, 12, 0, 0, 0, saoPaulo), 1, saoPaulo)
	assert.Equal(t, "2018-11-03", from)
	assert.Equal(t, "2018-11-04", to)
}

func TestBuildPurchaseSeries_SumsPositiveCreditsOnly(t *testing.T) {
	purchases := []models.Purchase{
		{CreditsGranted: models.Num(10), PaidAt: "2024-01-02T08:00:00Z"},
		{CreditsGranted: models.Num(-5), PaidAt: "2024-01-02T09:00:00Z"},
		{CreditsGranted: models.Number{}, PaidAt: "2024-01-02T10:00:00Z"},
		{CreditsGranted: models.Num(7), CreatedAt: "2024-01-03T10:00:00Z"},
		{CreditsGranted: models.Num(3), PaidAt: "garbage"},
	}
	series := BuildPurchaseSeries(purchases, Filter{From: "2024-01-01", To: "2024-01-03", Location: time.UTC})

	require.Len(t, series, 3)
	assert.Equal(t, 10.0, series[1].Credits)
	assert.Equal(t, 7.0, series[2].Credits)
	assert.Equal(t, 17.0, TotalCredits(series))
}

func TestBuildPurchaseSeries_SparseWithoutCalendarBounds(t *testing.T) {
	purchases := []models.Purchase{
		{CreditsGranted: models.Num(4), PaidAt: "2024-02-10T08:00:00Z"},
		{CreditsGranted: models.Num(6), PaidAt: "2024-01-10T08:00:00Z"},
		{CreditsGranted: models.Num(1), PaidAt: "2024-01-10T09:00:00Z"},
	}
	series := BuildPurchaseSeries(purchases, Filter{From: "last month", To: "now", Location: time.UTC})

	assert.Equal(t, []SeriesPoint{
		{Date: "2024-01-10", Credits: 7},
		{Date: "2024-02-10", Credits: 4},
	}, series)
}

func TestSelectPurchasesInRange_InclusiveEnd(t *testing.T) {
	overview := &models.UsageOverview{
		Purchases: []models.Purchase{
			{ID: "last", PaidAt: "2024-01-07T23:59:59.999Z"},
			{ID: "next", PaidAt: "2024-01-08T00:00:00.000Z"},
			{ID: "first", PaidAt: "2024-01-04T00:00:00Z"},
			{ID: "before", PaidAt: "2024-01-03T23:59:59.999Z"},
		},
	}
	got := SelectPurchasesInRange(overview, Filter{From: "2024-01-04", To: "2024-01-07", Location: time.UTC})

	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"last", "first"}, ids)
}

func TestSelectPurchasesInRange_FailsOpen(t *testing.T) {
	overview := &models.UsageOverview{
		Purchases: []models.Purchase{
			{ID: "1", APIKeyID: "a", PaidAt: "2020-01-01T00:00:00Z"},
			{ID: "2", APIKeyID: "b", PaidAt: "not a date"},
		},
	}
	got := SelectPurchasesInRange(overview, Filter{From: "", To: "2024-01-07", KeyID: "a"})
	assert.Len(t, got, 2)

	assert.Empty(t, SelectPurchasesInRange(nil, Filter{}))
}

func TestSelectPurchasesInRange_LenientCalendar(t *testing.T) {
	overview := &models.UsageOverview{
		Purchases: []models.Purchase{{ID: "1", PaidAt: "2024-02-01T12:00:00Z"}},
	}
	// 2024-01-32 rolls over to 2024-02-01.
	got := SelectPurchasesInRange(overview, Filter{From: "2024-01-32", To: "2024-02-01", Location: time.UTC})
	assert.Len(t, got, 1)
}

func TestSelectPurchasesInRange_FilterLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	overview := &models.UsageOverview{
		Purchases: []models.Purchase{{ID: "1", PaidAt: "2024-01-04T20:00:00Z"}},
	}

	// 20:00 UTC on the 4th is already the 5th in Tokyo.
	assert.Empty(t, SelectPurchasesInRange(overview, Filter{From: "2024-01-04", To: "2024-01-04", Location: tokyo}))
	assert.Len(t, SelectPurchasesInRange(overview, Filter{From: "2024-01-05", To: "2024-01-05", Location: tokyo}), 1)
}

func TestComputeProductStats_PerKeyMode(t *testing.T) {
	overview := &models.UsageOverview{
		Keys: []models.UsageKey{
			{ID: "a", Products: []models.KeyProduct{
				{Product: "ocr", RemainingCredits: models.Num(30), PurchasedCredits: models.Num(100), UsedCredits: models.Num(70)},
				{Product: "vin", RemainingCredits: models.Num(5), UsedCredits: models.Num(5), TotalCredits: models.Num(20)},
			}},
			{ID: "b", Products: []models.KeyProduct{
				{Product: "ocr", RemainingCredits: models.Num(10), PurchasedCredits: models.Num(10)},
			}},
		},
	}

	rows := ComputeProductStats(overview, nil, AllKeys, Policy{})
	require.Len(t, rows, 2)
	assert.Equal(t, ProductCreditRow{Product: "ocr", Remaining: 40, Purchased: 110, Used: 70, Total: 110}, rows[0])
	assert.Equal(t, ProductCreditRow{Product: "vin", Remaining: 5, Purchased: 0, Used: 5, Total: 20}, rows[1])

	selected := FindKey(overview, "b")
	require.NotNil(t, selected)
	rows = ComputeProductStats(overview, selected, "b", Policy{})
	require.Len(t, rows, 1)
	assert.Equal(t, 10.0, rows[0].Remaining)
	assert.Zero(t, rows[0].Used)
}

func TestComputeProductStats_AccountModeMerge(t *testing.T) {
	overview := &models.UsageOverview{
		Keys: []models.UsageKey{{ID: "a"}},
		Products: []models.AccountProduct{
			{Product: "ocr", RemainingCredits: models.Num(80), PurchasedCredits: models.Num(100)},
			{Product: "vin", RemainingCredits: models.Num(1)},
		},
		Purchases: []models.Purchase{
			{APIKeyID: "a", Product: "ocr", CreditsGranted: models.Num(60)},
			{APIKeyID: "b", Product: "ocr", CreditsGranted: models.Num(90)},
			{APIKeyID: "a", Product: "lpr", CreditsGranted: models.Num(25)},
		},
	}

	tests := []struct {
		name   string
		keyID  string
		policy Policy
		want   map[string]float64
	}{
		{"reconcile all keys", AllKeys, Policy{PurchasedMerge: MergeReconcile}, map[string]float64{"ocr": 150, "vin": 0, "lpr": 25}},
		{"reconcile key a", "a", Policy{PurchasedMerge: MergeReconcile}, map[string]float64{"ocr": 100, "vin": 0, "lpr": 25}},
		{"additive all keys", AllKeys, Policy{PurchasedMerge: MergeAdditive}, map[string]float64{"ocr": 250, "vin": 0, "lpr": 25}},
		{"additive key a", "a", Policy{PurchasedMerge: MergeAdditive}, map[string]float64{"ocr": 160, "vin": 0, "lpr": 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := ComputeProductStats(overview, nil, tt.keyID, tt.policy)
			require.Len(t, rows, 3)
			got := make(map[string]float64)
			for _, r := range rows {
				got[r.Product] = r.Purchased
				assert.Zero(t, r.Used, r.Product)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "ocr", rows[0].Product)
		})
	}
}

func TestComputeProductStats_StableOrder(t *testing.T) {
	overview := &models.UsageOverview{
		Products: []models.AccountProduct{
			{Product: "b", PurchasedCredits: models.Num(5)},
			{Product: "a", PurchasedCredits: models.Num(5)},
			{Product: "c", PurchasedCredits: models.Num(9)},
		},
	}
	rows := ComputeProductStats(overview, nil, AllKeys, Policy{})

	names := []string{rows[0].Product, rows[1].Product, rows[2].Product}
	assert.Equal(t, []string{"c", "b", "a"}, names)
}

func TestComputeProductStats_MalformedPayload(t *testing.T) {
	var overview models.UsageOverview
	payload := `{
		"keys": [{"_id": "k", "products": [{"product": "ocr", "remainingCredits": "lots", "usedCredits": null}]}],
		"products": [{"product": "", "remainingCredits": 3}],
		"purchases": [{"product": "ocr", "creditsGranted": {"bad": true}}]
	}`
	require.NoError(t, json.Unmarshal([]byte(payload), &overview))

	assert.NotPanics(t, func() {
		view := Derive(&overview, Filter{From: "2024-01-01", To: "2024-01-02"}, Policy{})
		require.Len(t, view.ProductStats, 1)
		assert.Equal(t, ProductCreditRow{Product: "ocr"}, view.ProductStats[0])
		assert.Equal(t, "k", view.SelectedKeyID)
	})
}

func TestComputeTotals(t *testing.T) {
	overview := &models.UsageOverview{
		Keys: []models.UsageKey{{ID: "a"}, {ID: "b", Status: "REVOKED"}, {ID: "c"}},
	}
	rows := []ProductCreditRow{
		{Product: "ocr", Remaining: 10, Purchased: 40},
		{Product: "vin", Remaining: 2, Purchased: 5},
	}
	totals := ComputeTotals(rows, make([]models.Purchase, 3), overview)

	assert.Equal(t, Totals{TotalPurchasedCredits: 45, TotalRemainingCredits: 12, PurchasesCount: 3, KeysCount: 2}, totals)
}

func TestKeyOptionsAndResolve(t *testing.T) {
	overview := &models.UsageOverview{
		Keys: []models.UsageKey{
			{ID: "a", Name: "prod", Prefix: "vk_12345"},
			{MongoID: "b"},
			{Name: "no id"},
		},
	}
	options := KeyOptions(overview)
	assert.Equal(t, []KeyOption{
		{ID: "a", Label: "prod (vk_12345...)"},
		{ID: "b", Label: "Unnamed key"},
	}, options)

	assert.Equal(t, AllKeys, ResolveKeyID(options, AllKeys))
	assert.Equal(t, "b", ResolveKeyID(options, "b"))
	assert.Equal(t, "a", ResolveKeyID(options[:1], ""))
	assert.Nil(t, FindKey(overview, AllKeys))
	assert.Nil(t, FindKey(overview, "missing"))
}

func TestHasPurchaseEvidence(t *testing.T) {
	assert.False(t, HasPurchaseEvidence(nil))
	assert.False(t, HasPurchaseEvidence(&models.UsageOverview{
		Products: []models.AccountProduct{{Product: "ocr", RemainingCredits: models.Num(0)}},
	}))
	assert.True(t, HasPurchaseEvidence(&models.UsageOverview{
		Products: []models.AccountProduct{{Product: "ocr", PurchasedCredits: models.Num(1)}},
	}))
	assert.True(t, HasPurchaseEvidence(&models.UsageOverview{Purchases: []models.Purchase{{}}}))
}

func TestDefaultRange(t *testing.T) {
	now := time.Date(2024, 3, 15, 22, 30, 0, 0, time.UTC)
	from, to := DefaultRange(now, 30, time.UTC)
	assert.Equal(t, "2024-02-14", from)
	assert.Equal(t, "2024-03-15", to)

	tokyo := time.FixedZone("JST", 9*60*60)
	_, to = DefaultRange(now, 30, tokyo)
	assert.Equal(t, "2024-03-16", to)
}

func TestParseMergePolicy(t *testing.T) {
	assert.Equal(t, MergeAdditive, ParseMergePolicy(" Additive "))
	assert.Equal(t, MergeReconcile, ParseMergePolicy("reconcile"))
	assert.Equal(t, MergeReconcile, ParseMergePolicy("bogus"))
	assert.Equal(t, "additive", MergeAdditive.String())
}

func TestRangeDays(t *testing.T) {
	days, ok := RangeDays(Filter{From: "2024-01-04", To: "2024-01-07", Location: time.UTC})
	assert.True(t, ok)
	assert.Equal(t, 4, days)

	days, ok = RangeDays(Filter{From: "2024-03-09", To: "2024-03-11", Location: time.FixedZone("EST", -5*60*60)})
	assert.True(t, ok)
	assert.Equal(t, 3, days)

	days, ok = RangeDays(Filter{From: "2024-01-07", To: "2024-01-04"})
	assert.True(t, ok)
	assert.Zero(t, days)

	_, ok = RangeDays(Filter{From: "yesterday", To: "2024-01-04"})
	assert.False(t, ok)
}
