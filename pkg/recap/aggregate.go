package recap

import (
	"sort"
	"time"

	"github.com/boozer-app/recap/pkg/dataset"
)

// unknownItem names items referenced by a consumption but absent from the
// catalog.
const unknownItem = "Unknown"

// Scope selects the consumption rows under consideration: one user's rows,
// or every row when All is set.
type Scope struct {
	UserID int64
	All    bool
}

// UserScope scopes to a single user's consumptions.
func UserScope(userID int64) Scope {
	return Scope{UserID: userID}
}

// Population scopes to the entire consumption log.
var Population = Scope{All: true}

func (s Scope) matches(c dataset.Consumption) bool {
	return s.All || c.UserID == s.UserID
}

// Aggregator computes count, variety, top-item, top-category and weekday
// metrics over the consumption log.
type Aggregator struct {
	consumptions []dataset.Consumption
	items        map[int64]dataset.Item
}

// NewAggregator builds an aggregator over the consumption log with the
// merged item catalog for name and category lookups.
func NewAggregator(consumptions []dataset.Consumption, items []dataset.Item) *Aggregator {
	byID := make(map[int64]dataset.Item, len(items))
	for _, it := range items {
		byID[it.ItemID] = it
	}
	return &Aggregator{consumptions: consumptions, items: byID}
}

// ConsumptionCount returns the number of consumption rows in scope.
// Zero identifies an inactive user, who is skipped by the assembler.
func (a *Aggregator) ConsumptionCount(scope Scope) int {
	n := 0
	for _, c := range a.consumptions {
		if scope.matches(c) {
			n++
		}
	}
	return n
}

// Variety returns the number of distinct items consumed in scope.
func (a *Aggregator) Variety(scope Scope) int {
	seen := make(map[int64]struct{})
	for _, c := range a.consumptions {
		if scope.matches(c) {
			seen[c.ItemID] = struct{}{}
		}
	}
	return len(seen)
}

// TopItems returns the n most-consumed items in scope, names resolved via
// the catalog.
func (a *Aggregator) TopItems(scope Scope, n int) []ItemCount {
	var ids []int64
	for _, c := range a.consumptions {
		if scope.matches(c) {
			ids = append(ids, c.ItemID)
		}
	}
	ranked := countByFirstSeen(ids)
	out := []ItemCount{}
	for i := 0; i < len(ranked) && i < n; i++ {
		name := unknownItem
		if it, ok := a.items[ranked[i].key]; ok {
			name = it.Name
		}
		out = append(out, ItemCount{Name: name, Consumptions: ranked[i].count})
	}
	return out
}

// TopCategories returns the n most-consumed categories in scope. Every
// consumption maps to exactly one category; items without a classification
// count toward the uncategorised sentinel. A large n returns the full breakdown,
// which is how the assembler builds the category list.
func (a *Aggregator) TopCategories(scope Scope, n int) []CategoryCount {
	var cats []string
	for _, c := range a.consumptions {
		if !scope.matches(c) {
			continue
		}
		cat := dataset.Uncategorised
		if it, ok := a.items[c.ItemID]; ok && it.Category != "" {
			cat = it.Category
		}
		cats = append(cats, cat)
	}
	ranked := countByFirstSeen(cats)
	out := []CategoryCount{}
	for i := 0; i < len(ranked) && i < n; i++ {
		out = append(out, CategoryCount{Category: ranked[i].key, Consumptions: ranked[i].count})
	}
	return out
}

// DayDistribution counts consumptions in scope per weekday. All seven
// weekdays are always present, so the values sum to ConsumptionCount.
func (a *Aggregator) DayDistribution(scope Scope) map[string]int {
	days := map[string]int{
		"Monday": 0, "Tuesday": 0, "Wednesday": 0,
		"Thursday": 0, "Friday": 0, "Saturday": 0, "Sunday": 0,
	}
	for _, c := range a.consumptions {
		if scope.matches(c) {
			days[c.Time.Weekday().String()]++
		}
	}
	return days
}

// Timestamps returns the consumption timestamps in scope, in log order.
func (a *Aggregator) Timestamps(scope Scope) []time.Time {
	var ts []time.Time
	for _, c := range a.consumptions {
		if scope.matches(c) {
			ts = append(ts, c.Time.Time)
		}
	}
	return ts
}

type counted[K comparable] struct {
	key       K
	count     int
	firstSeen int
}

// countByFirstSeen tallies keys and ranks them by descending count. Ties
// are broken by the position of the key's first appearance in the input,
// so the ingestion order of the consumption log is the canonical
// tie-break and the ranking is deterministic.
func countByFirstSeen[K comparable](keys []K) []counted[K] {
	index := make(map[K]int)
	var out []counted[K]
	for i, k := range keys {
		j, ok := index[k]
		if !ok {
			j = len(out)
			index[k] = j
			out = append(out, counted[K]{key: k, firstSeen: i})
		}
		out[j].count++
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].firstSeen < out[j].firstSeen
	})
	return out
}
