package public

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/deficit-app/deficit-admin/internal/pricing"
	"github.com/deficit-app/deficit-admin/internal/waitlist"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memoryStore is a minimal waitlist.Store for handler tests.
type memoryStore struct {
	entries []waitlist.Entry
}

func (s *memoryStore) Join(_ context.Context, entry *waitlist.Entry) error {
	for _, existing := range s.entries {
		if existing.Email == entry.Email {
			return waitlist.ErrDuplicate
		}
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *memoryStore) List(context.Context, waitlist.ListParams) (*waitlist.ListResult, error) {
	return &waitlist.ListResult{Entries: s.entries, Total: len(s.entries)}, nil
}

func (s *memoryStore) Delete(context.Context, []string) (int, error) { return 0, nil }

func (s *memoryStore) Stats(context.Context, time.Time) (*waitlist.Stats, error) {
	return &waitlist.Stats{}, nil
}

func postJoin(engine *gin.Engine, payload string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/waitlist", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestWaitlistJoin(t *testing.T) {
	store := &memoryStore{}
	engine := gin.New()
	RegisterPublicRoutes(engine, store)

	rec := postJoin(engine, `{"email":"New@Example.COM"}`, map[string]string{
		"Referer":    "https://deficit.app/",
		"User-Agent": "test-agent",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("join: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.entries) != 1 {
		t.Fatalf("expected 1 stored entry, got %d", len(store.entries))
	}
	entry := store.entries[0]
	if entry.Email != "new@example.com" {
		t.Fatalf("email not normalized: %q", entry.Email)
	}
	if entry.ReferralSource != "https://deficit.app/" || entry.UserAgent != "test-agent" {
		t.Fatalf("request metadata not captured: %+v", entry)
	}
}

func TestWaitlistJoinRejectsBadEmail(t *testing.T) {
	engine := gin.New()
	RegisterPublicRoutes(engine, &memoryStore{})

	for _, payload := range []string{`{}`, `{"email":""}`, `{"email":"not-an-email"}`, `not json`} {
		rec := postJoin(engine, payload, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("payload %q: expected 400, got %d", payload, rec.Code)
		}
	}
}

func TestWaitlistJoinDuplicate(t *testing.T) {
	engine := gin.New()
	RegisterPublicRoutes(engine, &memoryStore{entries: []waitlist.Entry{{Email: "dup@example.com"}}})

	rec := postJoin(engine, `{"email":"dup@example.com"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", rec.Code)
	}
}

func TestWaitlistRouteAbsentWithoutStore(t *testing.T) {
	engine := gin.New()
	RegisterPublicRoutes(engine, nil)

	rec := postJoin(engine, `{"email":"x@example.com"}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a store, got %d", rec.Code)
	}
}

func TestPricingResolvesCountryHeader(t *testing.T) {
	engine := gin.New()
	RegisterPublicRoutes(engine, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/pricing", nil)
	req.Header.Set(pricing.CountryHeader, "jp")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body pricing.Resolved
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &body); errDecode != nil {
		t.Fatalf("decode body: %v", errDecode)
	}
	if body.Country != "JP" || body.Currency != "JPY" || body.Monthly != 680 {
		t.Fatalf("unexpected pricing: %+v", body)
	}

	var cookie *http.Cookie
	for _, raw := range rec.Result().Cookies() {
		if raw.Name == pricing.CookieName {
			cookie = raw
		}
	}
	if cookie == nil {
		t.Fatalf("expected %s cookie", pricing.CookieName)
	}
	if cookie.HttpOnly {
		t.Fatalf("pricing cookie must be readable client side")
	}
	decoded, errUnescape := url.QueryUnescape(cookie.Value)
	if errUnescape != nil {
		t.Fatalf("unescape cookie: %v", errUnescape)
	}
	var fromCookie pricing.Resolved
	if errDecode := json.Unmarshal([]byte(decoded), &fromCookie); errDecode != nil {
		t.Fatalf("decode cookie payload: %v", errDecode)
	}
	if fromCookie.Country != "JP" {
		t.Fatalf("cookie payload mismatch: %+v", fromCookie)
	}
}

func TestPricingUnknownCountryFallsBackToUSPrices(t *testing.T) {
	engine := gin.New()
	RegisterPublicRoutes(engine, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/pricing", nil)
	req.Header.Set(pricing.CountryHeader, "ZZ")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var body pricing.Resolved
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &body); errDecode != nil {
		t.Fatalf("decode body: %v", errDecode)
	}
	if body.Country != "ZZ" {
		t.Fatalf("reported country should be preserved, got %q", body.Country)
	}
	if body.Currency != "USD" || body.Monthly != 4.99 {
		t.Fatalf("expected US fallback prices, got %+v", body)
	}
}
