// Package pricing resolves regional subscription pricing from the client's
// country and exposes it to the landing page through a readable cookie.
package pricing

import "strings"

// CountryHeader is set by the edge proxy with the client's ISO country code.
const CountryHeader = "X-Vercel-IP-Country"

// DefaultCountry is used when the edge header is absent.
const DefaultCountry = "US"

// CookieName holds the serialized pricing payload. The cookie is not
// httpOnly because the landing page reads it client side.
const CookieName = "pricing"

// CookieMaxAge is the pricing cookie lifetime in seconds.
const CookieMaxAge = 60 * 60 * 24

// Tier is the price set for one currency region. JPY, INR and MXN carry
// whole-unit prices, the rest two decimals.
type Tier struct {
	Currency string  `json:"currency"`
	Symbol   string  `json:"symbol"`
	Annual   float64 `json:"annual"`
	Lifetime float64 `json:"lifetime"`
	Monthly  float64 `json:"monthly"`
}

// Resolved is the payload written to the pricing cookie.
type Resolved struct {
	Country string `json:"country"`
	Tier
}

var euro = Tier{Currency: "EUR", Symbol: "€", Annual: 32.99, Lifetime: 94.99, Monthly: 4.49}

var tiers = map[string]Tier{
	"US": {Currency: "USD", Symbol: "$", Annual: 34.99, Lifetime: 99.99, Monthly: 4.99},
	"GB": {Currency: "GBP", Symbol: "£", Annual: 27.99, Lifetime: 79.99, Monthly: 3.99},
	"DE": euro,
	"FR": euro,
	"IT": euro,
	"ES": euro,
	"NL": euro,
	"BE": euro,
	"AT": euro,
	"IE": euro,
	"PT": euro,
	"FI": euro,
	"CA": {Currency: "CAD", Symbol: "CA$", Annual: 46.99, Lifetime: 134.99, Monthly: 6.49},
	"AU": {Currency: "AUD", Symbol: "A$", Annual: 54.99, Lifetime: 159.99, Monthly: 7.49},
	"NZ": {Currency: "NZD", Symbol: "NZ$", Annual: 57.99, Lifetime: 169.99, Monthly: 7.99},
	"JP": {Currency: "JPY", Symbol: "¥", Annual: 4900, Lifetime: 14900, Monthly: 680},
	"IN": {Currency: "INR", Symbol: "₹", Annual: 1499, Lifetime: 4499, Monthly: 199},
	"BR": {Currency: "BRL", Symbol: "R$", Annual: 89.90, Lifetime: 249.90, Monthly: 12.90},
	"MX": {Currency: "MXN", Symbol: "MX$", Annual: 449, Lifetime: 1299, Monthly: 64},
}

// Resolve returns the pricing for the country code. Unknown or empty
// countries fall back to the US tier; the reported country is kept so the
// page still knows where the visitor is.
func Resolve(country string) Resolved {
	code := strings.ToUpper(strings.TrimSpace(country))
	if code == "" {
		code = DefaultCountry
	}
	tier, ok := tiers[code]
	if !ok {
		tier = tiers[DefaultCountry]
	}
	return Resolved{Country: code, Tier: tier}
}
