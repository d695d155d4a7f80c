package recap

import (
	"sort"
	"time"
)

const weekStartLayout = "2006-01-02"

// Binner buckets consumption timestamps into fixed-width calendar weeks
// anchored to a start-of-week weekday.
type Binner struct {
	anchor time.Weekday
}

// NewBinner creates a binner with the given week anchor. The zero value of
// time.Weekday is Sunday, so callers wanting the default Monday anchor
// pass time.Monday explicitly.
func NewBinner(anchor time.Weekday) *Binner {
	return &Binner{anchor: anchor}
}

// WeeklyCounts buckets timestamps by calendar week and gap-fills every
// week between the earliest and latest observed week with a zero count.
// The result is chronologically ordered; empty input yields an empty
// sequence.
func (b *Binner) WeeklyCounts(timestamps []time.Time) []WeeklyBucket {
	if len(timestamps) == 0 {
		return []WeeklyBucket{}
	}

	counts := make(map[string]int)
	var starts []time.Time
	seen := make(map[string]bool)
	for _, ts := range timestamps {
		ws := b.weekStart(ts)
		key := ws.Format(weekStartLayout)
		counts[key]++
		if !seen[key] {
			seen[key] = true
			starts = append(starts, ws)
		}
	}

	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	first, last := starts[0], starts[len(starts)-1]

	var out []WeeklyBucket
	for ws := first; !ws.After(last); ws = ws.AddDate(0, 0, 7) {
		key := ws.Format(weekStartLayout)
		out = append(out, WeeklyBucket{WeekStart: key, Consumptions: counts[key]})
	}
	return out
}

// weekStart returns midnight of the anchor weekday on or before t, in t's
// own location.
func (b *Binner) weekStart(t time.Time) time.Time {
	date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	back := (int(t.Weekday()) - int(b.anchor) + 7) % 7
	return date.AddDate(0, 0, -back)
}
