package store

const schema = `
CREATE TABLE IF NOT EXISTS items (
    item_id INTEGER PRIMARY KEY,
    name    TEXT NOT NULL,
    added   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    user_id  INTEGER PRIMARY KEY,
    username TEXT NOT NULL,
    created  INTEGER NOT NULL,
    recap    TEXT
);

CREATE TABLE IF NOT EXISTS consumptions (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(user_id),
    item_id INTEGER NOT NULL REFERENCES items(item_id),
    time    INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_consumptions_user ON consumptions(user_id);
CREATE INDEX IF NOT EXISTS idx_consumptions_item ON consumptions(item_id);
CREATE INDEX IF NOT EXISTS idx_consumptions_time ON consumptions(time);
`
