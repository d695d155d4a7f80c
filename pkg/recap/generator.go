// Package recap turns a static snapshot of drink-consumption events into
// per-user and population-wide recap documents. The computation is a
// strictly batch, two-pass design: pass one aggregates each active user in
// isolation, pass two ranks every user's consumption count against the
// population collected during pass one.
package recap

import (
	"time"

	"github.com/boozer-app/recap/pkg/dataset"
)

// Options tunes recap generation. Start from DefaultOptions and override
// individual fields; NewGenerator only repairs non-positive caps.
type Options struct {
	// TopItems caps the per-scope item ranking.
	TopItems int
	// TopCategories caps the category ranking. The default of 1000 is an
	// effectively unbounded cap, so recaps carry the full category
	// breakdown rather than a top slice.
	TopCategories int
	// WeekAnchor is the weekday that starts a calendar week.
	WeekAnchor time.Weekday
}

// DefaultOptions returns the standard generation options: top 5 items,
// full category breakdown, weeks starting on Monday.
func DefaultOptions() Options {
	return Options{TopItems: 5, TopCategories: 1000, WeekAnchor: time.Monday}
}

// Generator assembles recap documents from the loaded tables.
type Generator struct {
	agg    *Aggregator
	binner *Binner
	users  []dataset.User
	items  []dataset.Item
	opts   Options
}

// NewGenerator builds a generator over the merged tables.
func NewGenerator(t *dataset.Tables, opts Options) *Generator {
	if opts.TopItems <= 0 {
		opts.TopItems = 5
	}
	if opts.TopCategories <= 0 {
		opts.TopCategories = 1000
	}
	return &Generator{
		agg:    NewAggregator(t.Consumptions, t.Items),
		binner: NewBinner(opts.WeekAnchor),
		users:  t.Users,
		items:  t.Items,
		opts:   opts,
	}
}

// UserRecap assembles the recap for one user, or nil when the user has no
// consumptions at all.
func (g *Generator) UserRecap(userID int64) *UserRecap {
	scope := UserScope(userID)
	count := g.agg.ConsumptionCount(scope)
	if count == 0 {
		return nil
	}
	return &UserRecap{
		UserID: userID,
		Recap: Body{
			Consumptions: ConsumptionStats{
				ConsumptionCount: count,
				Variety:          g.agg.Variety(scope),
			},
			WeeklyCounts: g.binner.WeeklyCounts(g.agg.Timestamps(scope)),
			TopItems:     g.agg.TopItems(scope, g.opts.TopItems),
			Categories:   g.agg.TopCategories(scope, g.opts.TopCategories),
			Days:         g.agg.DayDistribution(scope),
		},
	}
}

// UserRecaps runs both passes: it assembles a recap for every active user
// in table order, then ranks each against the population of active-user
// consumption counts.
func (g *Generator) UserRecaps() []UserRecap {
	recaps := []UserRecap{}
	var counts []int
	for _, u := range g.users {
		r := g.UserRecap(u.UserID)
		if r == nil {
			continue
		}
		recaps = append(recaps, *r)
		counts = append(counts, r.Recap.Consumptions.ConsumptionCount)
	}
	for i := range recaps {
		recaps[i].Recap.Consumptions.Percentile =
			RoundedPercentile(recaps[i].Recap.Consumptions.ConsumptionCount, counts)
	}
	return recaps
}

// GlobalRecap assembles the population-wide recap document.
func (g *Generator) GlobalRecap() *GlobalRecap {
	return &GlobalRecap{
		Consumptions: GlobalConsumptions{Count: g.agg.ConsumptionCount(Population)},
		Items: GlobalItems{
			Count:    len(g.items),
			TopItems: g.agg.TopItems(Population, g.opts.TopItems),
		},
		Users:        GlobalUsers{Count: len(g.users)},
		WeeklyCounts: g.binner.WeeklyCounts(g.agg.Timestamps(Population)),
	}
}
