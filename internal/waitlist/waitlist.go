// Package waitlist persists landing page signups. Signups live in their own
// document store, apart from the relational app data, so the marketing site
// can run before the app database exists.
package waitlist

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate reports an email that already joined.
var ErrDuplicate = errors.New("waitlist: email already joined")

// Entry is one waitlist signup.
type Entry struct {
	ID             string    `firestore:"-" json:"id"`
	Email          string    `firestore:"email" json:"email"`
	ReferralSource string    `firestore:"referral_source" json:"referral_source"`
	UserAgent      string    `firestore:"user_agent" json:"user_agent"`
	CreatedAt      time.Time `firestore:"created_at" json:"created_at"`
}

// ListParams filters and pages the admin listing.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	Sort   string
	Order  string
}

// ListResult is one page of entries plus the total match count.
type ListResult struct {
	Entries []Entry
	Total   int
}

// DailyCount is one day of the signup chart.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Stats summarizes signups for the admin dashboard.
type Stats struct {
	TotalSignups int          `json:"totalSignups"`
	TodaySignups int          `json:"todaySignups"`
	ChartData    []DailyCount `json:"chartData"`
}

// ChartDays is the span of the signup chart.
const ChartDays = 30

// Store is the waitlist persistence contract.
type Store interface {
	// Join records a signup. The email must already be lowercased.
	Join(ctx context.Context, entry *Entry) error
	// List returns a page of entries for the admin dashboard.
	List(ctx context.Context, params ListParams) (*ListResult, error)
	// Delete removes the entries with the given IDs and returns how many
	// were requested.
	Delete(ctx context.Context, ids []string) (int, error)
	// Stats summarizes signups relative to now.
	Stats(ctx context.Context, now time.Time) (*Stats, error)
}

// BuildChart fills the trailing ChartDays days ending at now with the
// per-day counts, inserting zeroes for days without signups.
func BuildChart(daily map[string]int, now time.Time) []DailyCount {
	chart := make([]DailyCount, 0, ChartDays)
	for i := ChartDays - 1; i >= 0; i-- {
		date := now.UTC().AddDate(0, 0, -i).Format("2006-01-02")
		chart = append(chart, DailyCount{Date: date, Count: daily[date]})
	}
	return chart
}
