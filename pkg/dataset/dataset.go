package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// EpochTime is a timestamp stored as Unix seconds in JSON and in the
// database, decoded to UTC.
type EpochTime struct {
	time.Time
}

// NewEpochTime wraps t as an EpochTime.
func NewEpochTime(t time.Time) EpochTime {
	return EpochTime{Time: t}
}

func (t EpochTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(t.Unix(), 10)), nil
}

func (t *EpochTime) UnmarshalJSON(data []byte) error {
	secs, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("parse epoch seconds %q: %w", string(data), err)
	}
	t.Time = time.Unix(secs, 0).UTC()
	return nil
}

// Uncategorised is the sentinel category assigned when no classification
// is available for an item.
const Uncategorised = "uncategorised"

// Item is one row of the item table. Category is empty until the catalog
// merge populates it.
type Item struct {
	ItemID   int64     `json:"item_id"`
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
	Added    EpochTime `json:"added"`
}

// User is one row of the user table.
type User struct {
	UserID   int64     `json:"user_id"`
	Username string    `json:"username"`
	Created  EpochTime `json:"created"`
}

// Consumption is one append-only event in the consumption log.
type Consumption struct {
	UserID int64     `json:"user_id"`
	ItemID int64     `json:"item_id"`
	Time   EpochTime `json:"time"`
}

// Tables holds the three input tables for one recap run.
type Tables struct {
	Items        []Item
	Users        []User
	Consumptions []Consumption
}

// Validate checks the fatal precondition that every table is non-empty.
func (t *Tables) Validate() error {
	switch {
	case len(t.Items) == 0:
		return fmt.Errorf("items table is empty")
	case len(t.Users) == 0:
		return fmt.Errorf("users table is empty")
	case len(t.Consumptions) == 0:
		return fmt.Errorf("consumptions table is empty")
	}
	return nil
}

// LoadTables reads and validates all three tables from JSON files.
func LoadTables(itemsPath, usersPath, consumptionsPath string) (*Tables, error) {
	t := &Tables{}
	if err := ReadFile(itemsPath, &t.Items); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	if err := ReadFile(usersPath, &t.Users); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if err := ReadFile(consumptionsPath, &t.Consumptions); err != nil {
		return nil, fmt.Errorf("load consumptions: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// ReadFile decodes a JSON file into v.
func ReadFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// WriteFile encodes v as indented JSON to path.
func WriteFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
