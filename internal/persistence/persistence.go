package persistence

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// OpenSQLite opens dsn with the pure-Go modernc.org/sqlite driver and
// prepares a SQLiteHistoryStore on it. The returned database is owned by the
// caller.
func OpenSQLite(dsn string) (*sql.DB, *SQLiteHistoryStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	store, err := NewSQLiteHistoryStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("init history schema: %w", err)
	}
	return db, store, nil
}
