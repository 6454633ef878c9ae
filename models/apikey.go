package models

import "strings"

const StatusRevoked = "revoked"

// PrefixLength is the number of plaintext characters kept for display once the key is redacted.
const PrefixLength = 8

// APIKey is a key record as returned by /api/keys. Plaintext fields are only
// populated on the create response.
type APIKey struct {
	ID             string `json:"id,omitempty"`
	MongoID        string `json:"_id,omitempty"`
	Name           string `json:"name"`
	Key            string `json:"key,omitempty"`
	APIKey         string `json:"apiKey,omitempty"`
	Prefix         string `json:"prefix,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
	LastUsedAt     string `json:"lastUsedAt,omitempty"`
	LastTimeUsedAt string `json:"lastTimeUsedAt,omitempty"`

	Revoked   *bool  `json:"revoked,omitempty"`
	IsRevoked *bool  `json:"isRevoked,omitempty"`
	RevokedAt string `json:"revokedAt,omitempty"`
	Status    string `json:"status,omitempty"`
	Active    *bool  `json:"active,omitempty"`
}

func (k APIKey) Identifier() string {
	if k.ID != "" {
		return k.ID
	}
	return k.MongoID
}

// Revocation reports whether any of the revocation markers is set.
func (k APIKey) Revocation() bool {
	if k.Active != nil && !*k.Active {
		return true
	}
	if k.Revoked != nil && *k.Revoked {
		return true
	}
	if k.IsRevoked != nil && *k.IsRevoked {
		return true
	}
	if k.RevokedAt != "" {
		return true
	}
	return strings.EqualFold(k.Status, StatusRevoked)
}

// UsedAt returns the most specific usage timestamp and whether the key was ever used.
func (k APIKey) UsedAt() (string, bool) {
	if k.LastTimeUsedAt != "" {
		return k.LastTimeUsedAt, true
	}
	if k.LastUsedAt != "" {
		return k.LastUsedAt, true
	}
	return "", false
}

// Plaintext returns the full key when the record still holds it.
func (k APIKey) Plaintext() string {
	if k.APIKey != "" {
		return k.APIKey
	}
	return k.Key
}

// Redacted returns a copy without plaintext, keeping a short prefix for identification.
func (k APIKey) Redacted() APIKey {
	out := k
	if out.Prefix == "" {
		if plain := k.Plaintext(); plain != "" {
			p := plain
			if len(p) > PrefixLength {
				p = p[:PrefixLength]
			}
			out.Prefix = p
		}
	}
	out.Key = ""
	out.APIKey = ""
	return out
}

// DisplayPrefix is the masked identification string shown in key lists.
func (k APIKey) DisplayPrefix() string {
	if k.Prefix == "" {
		return ""
	}
	return k.Prefix + "..."
}

// ActiveKeys drops every revoked key, preserving order.
func ActiveKeys(keys []APIKey) []APIKey {
	out := make([]APIKey, 0, len(keys))
	for _, k := range keys {
		if k.Revocation() {
			continue
		}
		out = append(out, k)
	}
	return out
}

type CreateKeyRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}
