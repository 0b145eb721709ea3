package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mercator-hq/themis/pkg/rules"
)

// Schema is the rule set storage schema. The whole rule set document is
// stored as one JSON value per firm, so replacement is a single upsert and
// readers never see a partially written set.
const schema = `
CREATE TABLE IF NOT EXISTS rule_sets (
	firm_key   TEXT PRIMARY KEY,
	firm_name  TEXT NOT NULL,
	document   TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rule_sets_updated_at ON rule_sets(updated_at);
`

// openDatabase opens the SQLite database and initializes the schema.
func openDatabase(config *Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, &rules.PersistenceError{Op: "open", Cause: err}
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	if config.WALMode {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			db.Close()
			return nil, &rules.PersistenceError{Op: "enable_wal", Cause: err}
		}
	}

	busyTimeoutMs := config.BusyTimeout.Milliseconds()
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		db.Close()
		return nil, &rules.PersistenceError{Op: "set_busy_timeout", Cause: err}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &rules.PersistenceError{Op: "create_schema", Cause: err}
	}

	return db, nil
}

// writeRuleSet upserts the firm's rule set document.
func writeRuleSet(ctx context.Context, db *sql.DB, firmKey string, set *rules.RuleSet) error {
	document, err := json.Marshal(set)
	if err != nil {
		return &rules.PersistenceError{Op: "save", Cause: fmt.Errorf("marshal rule set: %w", err)}
	}

	query := `
		INSERT INTO rule_sets (firm_key, firm_name, document, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(firm_key) DO UPDATE SET
			firm_name = excluded.firm_name,
			document = excluded.document,
			updated_at = excluded.updated_at
	`

	if _, err := db.ExecContext(ctx, query, firmKey, set.FirmName, string(document), set.LastUpdated); err != nil {
		return &rules.PersistenceError{Op: "save", Cause: err}
	}
	return nil
}

// readRuleSet loads the firm's rule set document, or a NotFoundError when
// no durable record exists.
func readRuleSet(ctx context.Context, db *sql.DB, firmKey, firmName string) (*rules.RuleSet, error) {
	var document string
	err := db.QueryRowContext(ctx,
		"SELECT document FROM rule_sets WHERE firm_key = ?", firmKey,
	).Scan(&document)
	if err == sql.ErrNoRows {
		return nil, &rules.NotFoundError{Kind: "firm", Key: firmName}
	}
	if err != nil {
		return nil, &rules.PersistenceError{Op: "load", Cause: err}
	}

	var set rules.RuleSet
	if err := json.Unmarshal([]byte(document), &set); err != nil {
		return nil, &rules.PersistenceError{Op: "load", Cause: fmt.Errorf("unmarshal rule set: %w", err)}
	}
	return &set, nil
}

// expiredKeys returns the firm keys of durable records last modified before
// the cutoff.
func expiredKeys(ctx context.Context, db *sql.DB, cutoff time.Time) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT firm_key FROM rule_sets WHERE updated_at < ?", cutoff,
	)
	if err != nil {
		return nil, &rules.PersistenceError{Op: "sweep", Cause: err}
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, &rules.PersistenceError{Op: "sweep", Cause: err}
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, &rules.PersistenceError{Op: "sweep", Cause: err}
	}
	return keys, nil
}

// deleteRuleSet removes the firm's durable record.
func deleteRuleSet(ctx context.Context, db *sql.DB, firmKey string) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM rule_sets WHERE firm_key = ?", firmKey); err != nil {
		return &rules.PersistenceError{Op: "delete", Cause: err}
	}
	return nil
}
