package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/boozer-app/recap/pkg/dataset"
)

// Store is the persistence interface: the source of the three input
// tables and the destination of generated user recaps.
type Store interface {
	ListItems(ctx context.Context) ([]dataset.Item, error)
	ListUsers(ctx context.Context) ([]dataset.User, error)
	ListConsumptions(ctx context.Context) ([]dataset.Consumption, error)

	AddItem(ctx context.Context, item dataset.Item) error
	AddUser(ctx context.Context, user dataset.User) error
	AddConsumption(ctx context.Context, c dataset.Consumption) error

	SaveRecap(ctx context.Context, userID int64, recapJSON []byte) error

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type itemRow struct {
	ItemID int64  `db:"item_id"`
	Name   string `db:"name"`
	Added  int64  `db:"added"`
}

type userRow struct {
	UserID   int64  `db:"user_id"`
	Username string `db:"username"`
	Created  int64  `db:"created"`
}

type consumptionRow struct {
	UserID int64 `db:"user_id"`
	ItemID int64 `db:"item_id"`
	Time   int64 `db:"time"`
}

func (s *SQLiteStore) ListItems(ctx context.Context) ([]dataset.Item, error) {
	var rows []itemRow
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT item_id, name, added FROM items ORDER BY item_id"); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	items := make([]dataset.Item, len(rows))
	for i, r := range rows {
		items[i] = dataset.Item{
			ItemID: r.ItemID,
			Name:   r.Name,
			Added:  epochTime(r.Added),
		}
	}
	return items, nil
}

// ListUsers deliberately selects only user_id, username and created; the
// recap column written by SaveRecap never round-trips into an export.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]dataset.User, error) {
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT user_id, username, created FROM users ORDER BY user_id"); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]dataset.User, len(rows))
	for i, r := range rows {
		users[i] = dataset.User{
			UserID:   r.UserID,
			Username: r.Username,
			Created:  epochTime(r.Created),
		}
	}
	return users, nil
}

// ListConsumptions returns the consumption log in ingestion order, which
// downstream ranking treats as the canonical tie-break order.
func (s *SQLiteStore) ListConsumptions(ctx context.Context) ([]dataset.Consumption, error) {
	var rows []consumptionRow
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT user_id, item_id, time FROM consumptions ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list consumptions: %w", err)
	}
	consumptions := make([]dataset.Consumption, len(rows))
	for i, r := range rows {
		consumptions[i] = dataset.Consumption{
			UserID: r.UserID,
			ItemID: r.ItemID,
			Time:   epochTime(r.Time),
		}
	}
	return consumptions, nil
}

func (s *SQLiteStore) AddItem(ctx context.Context, item dataset.Item) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO items (item_id, name, added) VALUES (?, ?, ?)",
		item.ItemID, item.Name, item.Added.Unix())
	if err != nil {
		return fmt.Errorf("add item %d: %w", item.ItemID, err)
	}
	return nil
}

func (s *SQLiteStore) AddUser(ctx context.Context, user dataset.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (user_id, username, created) VALUES (?, ?, ?)",
		user.UserID, user.Username, user.Created.Unix())
	if err != nil {
		return fmt.Errorf("add user %d: %w", user.UserID, err)
	}
	return nil
}

func (s *SQLiteStore) AddConsumption(ctx context.Context, c dataset.Consumption) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO consumptions (user_id, item_id, time) VALUES (?, ?, ?)",
		c.UserID, c.ItemID, c.Time.Unix())
	if err != nil {
		return fmt.Errorf("add consumption: %w", err)
	}
	return nil
}

// SaveRecap writes a user's recap document onto their users row.
func (s *SQLiteStore) SaveRecap(ctx context.Context, userID int64, recapJSON []byte) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET recap = ? WHERE user_id = ?", string(recapJSON), userID)
	if err != nil {
		return fmt.Errorf("save recap for user %d: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("save recap: user %d not found", userID)
	}
	return nil
}

func epochTime(secs int64) dataset.EpochTime {
	return dataset.NewEpochTime(time.Unix(secs, 0).UTC())
}
