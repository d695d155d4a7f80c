package recap

// WeeklyBucket is one calendar week of consumption counts. WeekStart is
// the anchor-weekday date formatted as YYYY-MM-DD.
type WeeklyBucket struct {
	WeekStart    string `json:"week_start"`
	Consumptions int    `json:"consumptions"`
}

// ItemCount pairs an item name with how often it was consumed.
type ItemCount struct {
	Name         string `json:"name"`
	Consumptions int    `json:"consumptions"`
}

// CategoryCount pairs a category with how often it was consumed.
type CategoryCount struct {
	Category     string `json:"category"`
	Consumptions int    `json:"consumptions"`
}

// ConsumptionStats summarizes a user's overall activity. Percentile is
// filled in by the second pass: 0 means most active, 100 least active.
type ConsumptionStats struct {
	ConsumptionCount int `json:"consumption_count"`
	Variety          int `json:"variety"`
	Percentile       int `json:"percentile"`
}

// Body is the recap document body shared by the per-user output.
type Body struct {
	Consumptions ConsumptionStats `json:"consumptions"`
	WeeklyCounts []WeeklyBucket   `json:"weekly_counts"`
	TopItems     []ItemCount      `json:"top_items"`
	Categories   []CategoryCount  `json:"categories"`
	Days         map[string]int   `json:"days"`
}

// UserRecap is the per-user recap document.
type UserRecap struct {
	UserID int64 `json:"user_id"`
	Recap  Body  `json:"recap"`
}

// GlobalRecap is the population-wide recap document.
type GlobalRecap struct {
	Consumptions GlobalConsumptions `json:"consumptions"`
	Items        GlobalItems        `json:"items"`
	Users        GlobalUsers        `json:"users"`
	WeeklyCounts []WeeklyBucket     `json:"weekly_counts"`
}

type GlobalConsumptions struct {
	Count int `json:"count"`
}

type GlobalItems struct {
	Count    int         `json:"count"`
	TopItems []ItemCount `json:"top_items"`
}

type GlobalUsers struct {
	Count int `json:"count"`
}
