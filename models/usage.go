package models

import "strings"

// UsageOverview is the GET /api/usage payload. Every field is optional.
type UsageOverview struct {
	Status    string           `json:"status,omitempty"`
	Keys      []UsageKey       `json:"keys,omitempty"`
	Products  []AccountProduct `json:"products,omitempty"`
	Purchases []Purchase       `json:"purchases,omitempty"`
}

type UsageKey struct {
	ID        string       `json:"id,omitempty"`
	MongoID   string       `json:"_id,omitempty"`
	Name      string       `json:"name,omitempty"`
	Prefix    string       `json:"prefix,omitempty"`
	CreatedAt string       `json:"createdAt,omitempty"`
	Status    string       `json:"status,omitempty"`
	Products  []KeyProduct `json:"products,omitempty"`
}

// Identifier returns id, falling back to _id.
func (k UsageKey) Identifier() string {
	if k.ID != "" {
		return k.ID
	}
	return k.MongoID
}

func (k UsageKey) IsRevoked() bool {
	return strings.EqualFold(k.Status, StatusRevoked)
}

// KeyProduct is the per-key credit breakdown for one product.
type KeyProduct struct {
	Product          string `json:"product,omitempty"`
	RemainingCredits Number `json:"remainingCredits"`
	PurchasedCredits Number `json:"purchasedCredits"`
	UsedCredits      Number `json:"usedCredits"`
	TotalCredits     Number `json:"totalCredits"`
}

// AccountProduct is the account-level aggregate for one product.
type AccountProduct struct {
	Product          string `json:"product,omitempty"`
	RemainingCredits Number `json:"remainingCredits"`
	PurchasedCredits Number `json:"purchasedCredits"`
}

type Purchase struct {
	ID             string `json:"id,omitempty"`
	MongoID        string `json:"_id,omitempty"`
	APIKeyID       string `json:"apiKeyId,omitempty"`
	Product        string `json:"product,omitempty"`
	CreditsGranted Number `json:"creditsGranted"`
	CreatedAt      string `json:"createdAt,omitempty"`
	PaidAt         string `json:"paidAt,omitempty"`
	PackageID      string `json:"packageId,omitempty"`
}

// EffectiveTime returns paidAt when set, createdAt otherwise.
func (p Purchase) EffectiveTime() string {
	if p.PaidAt != "" {
		return p.PaidAt
	}
	return p.CreatedAt
}

// WithoutRevokedKeys returns a copy of the overview whose key list excludes revoked keys.
func (o UsageOverview) WithoutRevokedKeys() UsageOverview {
	out := o
	out.Keys = make([]UsageKey, 0, len(o.Keys))
	for _, k := range o.Keys {
		if k.IsRevoked() {
			continue
		}
		out.Keys = append(out.Keys, k)
	}
	return out
}
