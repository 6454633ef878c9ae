package models

type Product struct {
	ID          string `json:"id,omitempty"`
	MongoID     string `json:"_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Product     string `json:"product,omitempty"`
	Description string `json:"description,omitempty"`
}

type Package struct {
	ID       string `json:"id,omitempty"`
	MongoID  string `json:"_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Product  string `json:"product,omitempty"`
	Credits  Number `json:"credits"`
	Price    Number `json:"price"`
	Currency string `json:"currency,omitempty"`
}

func (p Package) Identifier() string {
	if p.ID != "" {
		return p.ID
	}
	return p.MongoID
}

type CheckoutRequest struct {
	PackageID  string `json:"packageId" validate:"required"`
	APIKeyID   string `json:"apiKeyId,omitempty"`
	SuccessURL string `json:"successUrl,omitempty" validate:"omitempty,url"`
	CancelURL  string `json:"cancelUrl,omitempty" validate:"omitempty,url"`
}

type CheckoutResponse struct {
	URL         string `json:"url,omitempty"`
	CheckoutURL string `json:"checkoutUrl,omitempty"`
	SessionID   string `json:"sessionId,omitempty"`
}

// RedirectURL returns whichever redirect field the backend filled in.
func (r CheckoutResponse) RedirectURL() string {
	if r.URL != "" {
		return r.URL
	}
	return r.CheckoutURL
}
