package projection

import (
	"fmt"
	"strings"
	"time"

	"github.com/Additional-Code/repairhub/internal/entity"
)

// Period bounds an earnings summary.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// ParsePeriod accepts an empty string as PeriodAll.
func ParsePeriod(raw string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PeriodAll, nil
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodAll:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q", raw)
	}
}

// EarningsSummary aggregates estimated prices of completed orders.
type EarningsSummary struct {
	Period  Period  `json:"period"`
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// Earnings sums completed orders whose completion time falls inside period. "today"
// compares calendar days in now's location; week and month are trailing 7 and 30
// day windows.
func Earnings(orders []entity.Order, period Period, now time.Time) EarningsSummary {
	summary := EarningsSummary{Period: period}
	for _, order := range orders {
		if order.Status != entity.StatusCompleted || !inPeriod(order.UpdatedAt, period, now) {
			continue
		}
		summary.Total += order.EstimatedPrice
		summary.Count++
	}
	if summary.Count > 0 {
		summary.Average = summary.Total / float64(summary.Count)
	}
	return summary
}

func inPeriod(at time.Time, period Period, now time.Time) bool {
	switch period {
	case PeriodToday:
		y1, m1, d1 := at.In(now.Location()).Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case PeriodWeek:
		return !at.Before(now.Add(-7 * 24 * time.Hour))
	case PeriodMonth:
		return !at.Before(now.Add(-30 * 24 * time.Hour))
	default:
		return true
	}
}
