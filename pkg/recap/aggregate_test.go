package recap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boozer-app/recap/pkg/dataset"
)

func consumption(userID, itemID int64, at string) dataset.Consumption {
	return dataset.Consumption{
		UserID: userID,
		ItemID: itemID,
		Time:   dataset.NewEpochTime(day(at)),
	}
}

func testItems() []dataset.Item {
	return []dataset.Item{
		{ItemID: 1, Name: "A", Category: "Lager"},
		{ItemID: 2, Name: "B", Category: "Stout"},
		{ItemID: 3, Name: "C"}, // never classified
	}
}

func TestConsumptionCountAndVariety(t *testing.T) {
	agg := NewAggregator([]dataset.Consumption{
		consumption(1, 1, "2024-01-01 18:00"),
		consumption(1, 1, "2024-01-02 18:00"),
		consumption(1, 2, "2024-01-03 18:00"),
		consumption(2, 1, "2024-01-04 18:00"),
	}, testItems())

	assert.Equal(t, 3, agg.ConsumptionCount(UserScope(1)))
	assert.Equal(t, 2, agg.Variety(UserScope(1)))
	assert.Equal(t, 1, agg.ConsumptionCount(UserScope(2)))
	assert.Equal(t, 4, agg.ConsumptionCount(Population))
	assert.Equal(t, 0, agg.ConsumptionCount(UserScope(99)))
}

func TestTopItems(t *testing.T) {
	agg := NewAggregator([]dataset.Consumption{
		consumption(1, 1, "2024-01-01 18:00"),
		consumption(1, 1, "2024-01-02 18:00"),
		consumption(1, 2, "2024-01-03 18:00"),
	}, testItems())

	top := agg.TopItems(UserScope(1), 5)
	require.Len(t, top, 2)
	assert.Equal(t, ItemCount{Name: "A", Consumptions: 2}, top[0])
	assert.Equal(t, ItemCount{Name: "B", Consumptions: 1}, top[1])
}

func TestTopItemsTieBrokenByFirstAppearance(t *testing.T) {
	// B and A both have two consumptions; B appears first in the log.
	agg := NewAggregator([]dataset.Consumption{
		consumption(1, 2, "2024-01-01 18:00"),
		consumption(1, 1, "2024-01-02 18:00"),
		consumption(1, 1, "2024-01-03 18:00"),
		consumption(1, 2, "2024-01-04 18:00"),
	}, testItems())

	top := agg.TopItems(UserScope(1), 5)
	require.Len(t, top, 2)
	assert.Equal(t, "B", top[0].Name)
	assert.Equal(t, "A", top[1].Name)
}

func TestTopItemsCapAndUnknownName(t *testing.T) {
	agg := NewAggregator([]dataset.Consumption{
		consumption(1, 7, "2024-01-01 18:00"), // not in catalog
		consumption(1, 1, "2024-01-02 18:00"),
		consumption(1, 2, "2024-01-03 18:00"),
	}, testItems())

	top := agg.TopItems(UserScope(1), 2)
	require.Len(t, top, 2)
	assert.Equal(t, "Unknown", top[0].Name)
}

func TestTopCategories(t *testing.T) {
	agg := NewAggregator([]dataset.Consumption{
		consumption(1, 1, "2024-01-01 18:00"),
		consumption(1, 2, "2024-01-02 18:00"),
		consumption(1, 1, "2024-01-03 18:00"),
		consumption(1, 3, "2024-01-04 18:00"), // unclassified item
	}, testItems())

	cats := agg.TopCategories(UserScope(1), 1000)
	require.Len(t, cats, 3)
	assert.Equal(t, CategoryCount{Category: "Lager", Consumptions: 2}, cats[0])
	assert.Equal(t, CategoryCount{Category: "Stout", Consumptions: 1}, cats[1])
	assert.Equal(t, CategoryCount{Category: dataset.Uncategorised, Consumptions: 1}, cats[2])
}

func TestDayDistribution(t *testing.T) {
	agg := NewAggregator([]dataset.Consumption{
		consumption(1, 1, "2024-01-01 18:00"), // Monday
		consumption(1, 1, "2024-01-05 18:00"), // Friday
		consumption(1, 2, "2024-01-06 18:00"), // Saturday
		consumption(1, 2, "2024-01-06 23:00"), // Saturday
	}, testItems())

	days := agg.DayDistribution(UserScope(1))
	require.Len(t, days, 7, "all seven weekdays must be present")
	assert.Equal(t, 1, days["Monday"])
	assert.Equal(t, 1, days["Friday"])
	assert.Equal(t, 2, days["Saturday"])
	assert.Equal(t, 0, days["Sunday"])

	sum := 0
	for _, n := range days {
		sum += n
	}
	assert.Equal(t, agg.ConsumptionCount(UserScope(1)), sum)
}

func TestEmptyScope(t *testing.T) {
	agg := NewAggregator([]dataset.Consumption{
		consumption(1, 1, "2024-01-01 18:00"),
	}, testItems())

	scope := UserScope(42)
	assert.Equal(t, 0, agg.ConsumptionCount(scope))
	assert.Equal(t, 0, agg.Variety(scope))
	assert.Empty(t, agg.TopItems(scope, 5))
	assert.Empty(t, agg.TopCategories(scope, 1000))
	assert.Empty(t, agg.Timestamps(scope))

	days := agg.DayDistribution(scope)
	require.Len(t, days, 7)
	for name, n := range days {
		assert.Zero(t, n, "weekday %s", name)
	}
}

func TestTimestampsPreserveLogOrder(t *testing.T) {
	agg := NewAggregator([]dataset.Consumption{
		consumption(1, 1, "2024-02-02 18:00"),
		consumption(1, 1, "2024-01-01 18:00"),
	}, testItems())

	ts := agg.Timestamps(UserScope(1))
	require.Len(t, ts, 2)
	assert.Equal(t, time.February, ts[0].Month())
	assert.Equal(t, time.January, ts[1].Month())
}
