package pricing

import "testing"

func TestResolveKnownCountries(t *testing.T) {
	cases := []struct {
		country  string
		currency string
		monthly  float64
	}{
		{"US", "USD", 4.99},
		{"GB", "GBP", 3.99},
		{"DE", "EUR", 4.49},
		{"FI", "EUR", 4.49},
		{"CA", "CAD", 6.49},
		{"JP", "JPY", 680},
		{"IN", "INR", 199},
	}
	for _, tc := range cases {
		got := Resolve(tc.country)
		if got.Country != tc.country {
			t.Fatalf("%s: got country %q", tc.country, got.Country)
		}
		if got.Currency != tc.currency {
			t.Fatalf("%s: got currency %q, want %q", tc.country, got.Currency, tc.currency)
		}
		if got.Monthly != tc.monthly {
			t.Fatalf("%s: got monthly %v, want %v", tc.country, got.Monthly, tc.monthly)
		}
	}
}

func TestResolveFallsBackToUSD(t *testing.T) {
	got := Resolve("ZZ")
	if got.Currency != "USD" {
		t.Fatalf("unknown country should price in USD, got %q", got.Currency)
	}
	if got.Country != "ZZ" {
		t.Fatalf("reported country should stay ZZ, got %q", got.Country)
	}

	empty := Resolve("")
	if empty.Country != DefaultCountry || empty.Currency != "USD" {
		t.Fatalf("empty country should default to US, got %+v", empty)
	}

	lower := Resolve("gb")
	if lower.Currency != "GBP" {
		t.Fatalf("country code should be case insensitive, got %q", lower.Currency)
	}
}
