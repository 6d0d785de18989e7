package waitlist

import (
	"testing"
	"time"
)

func TestBuildChartFillsMissingDays(t *testing.T) {
	now := time.Date(2025, 6, 30, 15, 0, 0, 0, time.UTC)
	daily := map[string]int{
		"2025-06-30": 3,
		"2025-06-15": 1,
	}
	chart := BuildChart(daily, now)
	if len(chart) != ChartDays {
		t.Fatalf("expected %d days, got %d", ChartDays, len(chart))
	}
	if chart[0].Date != "2025-06-01" {
		t.Fatalf("chart should start %d days back, got %s", ChartDays-1, chart[0].Date)
	}
	if chart[ChartDays-1].Date != "2025-06-30" || chart[ChartDays-1].Count != 3 {
		t.Fatalf("last day wrong: %+v", chart[ChartDays-1])
	}
	zeroes := 0
	for _, day := range chart {
		if day.Count == 0 {
			zeroes++
		}
		if day.Date == "2025-06-15" && day.Count != 1 {
			t.Fatalf("mid-window day wrong: %+v", day)
		}
	}
	if zeroes != ChartDays-2 {
		t.Fatalf("expected %d empty days, got %d", ChartDays-2, zeroes)
	}
}
