package classify

import (
	"context"
	"time"

	"github.com/boozer-app/recap/pkg/dataset"
	"github.com/sirupsen/logrus"
)

// Uncategorised is re-exported for callers configuring the merger.
const Uncategorised = dataset.Uncategorised

// Merger joins the item table with the classification cache. Cached
// categories are used verbatim. Unknown items are classified live when a
// classifier is configured, one call at a time with a fixed delay between
// calls to respect upstream rate limits; without a classifier they fall
// back to the sentinel.
type Merger struct {
	cache      *Cache
	classifier Classifier // nil disables live classification
	rateDelay  time.Duration
	sleep      func(time.Duration)
	log        *logrus.Entry
}

// NewMerger creates a merger over the given cache.
func NewMerger(cache *Cache, classifier Classifier, rateDelay time.Duration, log *logrus.Entry) *Merger {
	return &Merger{
		cache:      cache,
		classifier: classifier,
		rateDelay:  rateDelay,
		sleep:      time.Sleep,
		log:        log,
	}
}

// SetSleep replaces the inter-call delay function. Tests use this to run
// the rate-limit path without real delays.
func (m *Merger) SetSleep(sleep func(time.Duration)) {
	m.sleep = sleep
}

// Merge returns a copy of items with Category populated. A classification
// failure is never fatal: the item gets the sentinel and the run
// continues. Failed items are not cached, so a resumed run retries them.
// The cache is persisted once at the end if any new entries were added.
func (m *Merger) Merge(ctx context.Context, items []dataset.Item) ([]dataset.Item, error) {
	merged := make([]dataset.Item, len(items))
	for i, item := range items {
		merged[i] = item

		if category, ok := m.cache.Get(item.ItemID); ok {
			merged[i].Category = category
			continue
		}

		if m.classifier == nil {
			merged[i].Category = dataset.Uncategorised
			continue
		}

		category, err := m.classifier.Classify(ctx, item.Name)
		m.sleep(m.rateDelay)
		if err != nil {
			m.log.WithError(err).WithField("item", item.Name).
				Warn("classification failed, using sentinel")
			merged[i].Category = dataset.Uncategorised
			continue
		}
		m.log.WithField("item", item.Name).WithField("category", category).
			Info("classified item")
		merged[i].Category = category
		m.cache.Put(item.ItemID, item.Name, category)
	}

	if m.cache.Dirty() {
		if err := m.cache.Save(); err != nil {
			return nil, err
		}
	}
	return merged, nil
}
