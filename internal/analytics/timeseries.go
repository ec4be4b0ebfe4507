package analytics

import (
	"strconv"
	"time"

	"github.com/ignite/phishing-dashboard/internal/domain"
)

const (
	// TrendWindows is the number of trailing windows in the weekly trend.
	TrendWindows = 6
	// TrendWindowLength is the length of one trend window.
	TrendWindowLength = 7 * 24 * time.Hour
)

// Window is a half-open [Start, End) interval of the weekly trend.
type Window struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// TimeSeriesPoint is one week of the click-rate trend.
type TimeSeriesPoint struct {
	WeekLabel              string    `json:"week_label"`
	WindowStart            time.Time `json:"window_start"`
	WindowEnd              time.Time `json:"window_end"`
	Emails                 int       `json:"emails"`
	Clicks                 int       `json:"clicks"`
	OverallClickRatePct    int       `json:"overall_click_rate_pct"`
	DepartmentEmails       int       `json:"department_emails"`
	DepartmentClicks       int       `json:"department_clicks"`
	DepartmentClickRatePct int       `json:"department_click_rate_pct"`
}

// TrendWindowsAt returns the trailing windows relative to now, oldest first.
// Window i (counting down from TrendWindows-1) starts at now - i*7d, so the
// newest window begins at now itself. Boundaries slide with now; they are not
// aligned to calendar weeks.
func TrendWindowsAt(now time.Time) []Window {
	out := make([]Window, 0, TrendWindows)
	for i := TrendWindows - 1; i >= 0; i-- {
		start := now.Add(-time.Duration(i) * TrendWindowLength)
		out = append(out, Window{
			Label: "Week " + strconv.Itoa(TrendWindows-i),
			Start: start,
			End:   start.Add(TrendWindowLength),
		})
	}
	return out
}

func bucket(windows []Window, logs []domain.EmailLog) []tally {
	out := make([]tally, len(windows))
	for _, l := range logs {
		for i, w := range windows {
			if w.Contains(l.SentAt) {
				out[i].emails++
				if l.Clicked {
					out[i].clicks++
				}
				break
			}
		}
	}
	return out
}

// WindowRates buckets logs into the trailing windows and returns the rounded
// click rate of each window, oldest first. Empty windows are 0.
func WindowRates(logs []domain.EmailLog, now time.Time) []int {
	counts := bucket(TrendWindowsAt(now), logs)
	out := make([]int, len(counts))
	for i, c := range counts {
		out[i] = WholeRatePct(c.clicks, c.emails)
	}
	return out
}

// WeeklyTrend builds the overall series from logs and the department series
// from deptLogs, using the same windows for both. It always returns exactly
// TrendWindows points.
func WeeklyTrend(logs, deptLogs []domain.EmailLog, now time.Time) []TimeSeriesPoint {
	windows := TrendWindowsAt(now)
	overall := bucket(windows, logs)
	dept := bucket(windows, deptLogs)

	out := make([]TimeSeriesPoint, len(windows))
	for i, w := range windows {
		out[i] = TimeSeriesPoint{
			WeekLabel:              w.Label,
			WindowStart:            w.Start,
			WindowEnd:              w.End,
			Emails:                 overall[i].emails,
			Clicks:                 overall[i].clicks,
			OverallClickRatePct:    WholeRatePct(overall[i].clicks, overall[i].emails),
			DepartmentEmails:       dept[i].emails,
			DepartmentClicks:       dept[i].clicks,
			DepartmentClickRatePct: WholeRatePct(dept[i].clicks, dept[i].emails),
		}
	}
	return out
}
