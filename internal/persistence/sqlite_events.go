package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/petrijr/hookflow/pkg/api"
)

// SQLiteHistoryStore stores workflow history records in SQLite. Use
// OpenSQLite, or NewSQLiteHistoryStore on a database opened elsewhere.
type SQLiteHistoryStore struct {
	db *sql.DB
}

// Ensure SQLiteHistoryStore implements HistoryStore.
var _ HistoryStore = (*SQLiteHistoryStore)(nil)

func NewSQLiteHistoryStore(db *sql.DB) (*SQLiteHistoryStore, error) {
	s := &SQLiteHistoryStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteHistoryStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS workflow_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			workflow_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			at INTEGER NOT NULL,
			type TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_workflow_history_workflow_id ON workflow_history(workflow_id, seq);
	`)
	return err
}

func (s *SQLiteHistoryStore) AppendEntry(ctx context.Context, rec api.HistoryRecord) error {
	at := rec.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workflow_history (workflow_id, seq, at, type, detail)
		VALUES (?, ?, ?, ?, ?)`,
		rec.WorkflowID,
		rec.Seq,
		at.UnixNano(),
		string(rec.Type),
		rec.Detail,
	)
	return err
}

func (s *SQLiteHistoryStore) ListEntries(ctx context.Context, workflowID string) ([]api.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT workflow_id, seq, at, type, detail
		FROM workflow_history
		WHERE workflow_id = ?
		ORDER BY seq ASC, id ASC`, workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []api.HistoryRecord
	for rows.Next() {
		var (
			id     string
			seq    int
			atN    int64
			typ    string
			detail string
		)
		if err := rows.Scan(&id, &seq, &atN, &typ, &detail); err != nil {
			return nil, err
		}
		out = append(out, api.HistoryRecord{
			WorkflowID: id,
			Seq:        seq,
			At:         time.Unix(0, atN),
			Type:       api.HistoryType(typ),
			Detail:     detail,
		})
	}
	return out, rows.Err()
}
