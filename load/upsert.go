package load

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rasnes/marketdash-etl/records"
	"github.com/rasnes/marketdash-etl/utils"
)

// SentimentPolicy selects how the append-only news-sentiment table is
// loaded. There is no default: silently truncating (or silently
// accumulating duplicates) is a correctness hazard, so the caller must
// choose.
type SentimentPolicy string

const (
	// ReplaceAll atomically clears the table before inserting the batch.
	ReplaceAll SentimentPolicy = "replace-all"
	// Append inserts the batch on top of existing rows.
	Append SentimentPolicy = "append"
)

const defaultChunkSize = 1000

// LoadError reports a failed load together with the number of rows already
// committed by completed chunks, so the orchestrator can decide whether to
// retry the remainder or the whole batch.
type LoadError struct {
	Table         string
	RowsCommitted int
	Err           error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load into %s failed after %d committed rows: %v", e.Table, e.RowsCommitted, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader merges validated batches into the warehouse. Writes go through
// chunked statements so the working set per transaction stays bounded;
// chunk boundaries never change the final table state.
type Loader struct {
	db        *DuckDB
	chunkSize int
	logger    *slog.Logger
}

func NewLoader(db *DuckDB, chunkSize int, logger *slog.Logger) *Loader {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Loader{db: db, chunkSize: chunkSize, logger: logger}
}

// Upsert merges a batch into a keyed fact table with insert-or-update
// semantics: absent natural keys are inserted, present ones are overwritten
// in full (the created_at marker re-defaults to the write time). Upserting
// the same batch twice leaves the table unchanged.
func (l *Loader) Upsert(table records.Table, batch records.Batch) (int, error) {
	if len(table.Key) == 0 {
		return 0, fmt.Errorf("table %s has no natural key; use LoadSentiment", table.Name)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	// Collapse duplicate natural keys inside the batch, keeping the last
	// occurrence. A multi-row INSERT OR REPLACE cannot touch the same key
	// twice in one statement.
	deduped := dedupeByKey(batch, table.Key)

	committed := 0
	for _, chunk := range utils.Chunk(deduped, l.chunkSize) {
		if err := l.writeChunk(table, chunk, "INSERT OR REPLACE INTO"); err != nil {
			return committed, &LoadError{Table: table.Name, RowsCommitted: committed, Err: err}
		}
		committed += len(chunk)
	}

	l.logger.Info("Upserted batch", "table", table.Name, "rows", committed)
	return committed, nil
}

// LoadSentiment loads the unkeyed news-sentiment table under an explicit
// policy. ReplaceAll clears and repopulates the table in one transaction,
// so a failure leaves the previous contents intact; Append behaves like a
// chunked insert with the usual partial-state semantics.
func (l *Loader) LoadSentiment(batch records.Batch, policy SentimentPolicy) (int, error) {
	table := records.NewsSentiment

	switch policy {
	case ReplaceAll:
		tx, err := l.db.DB.BeginTx(context.Background(), nil)
		if err != nil {
			return 0, &LoadError{Table: table.Name, Err: fmt.Errorf("failed to begin transaction: %w", err)}
		}
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s;", table.Name)); err != nil {
			tx.Rollback()
			return 0, &LoadError{Table: table.Name, Err: fmt.Errorf("failed to clear table: %w", err)}
		}
		for _, chunk := range utils.Chunk(batch, l.chunkSize) {
			if err := execInsert(tx, table, chunk, "INSERT INTO"); err != nil {
				tx.Rollback()
				return 0, &LoadError{Table: table.Name, Err: err}
			}
		}
		if err := tx.Commit(); err != nil {
			return 0, &LoadError{Table: table.Name, Err: fmt.Errorf("failed to commit: %w", err)}
		}
		l.logger.Info("Replaced sentiment table contents", "table", table.Name, "rows", len(batch))
		return len(batch), nil

	case Append:
		committed := 0
		for _, chunk := range utils.Chunk(batch, l.chunkSize) {
			if err := l.writeChunk(table, chunk, "INSERT INTO"); err != nil {
				return committed, &LoadError{Table: table.Name, RowsCommitted: committed, Err: err}
			}
			committed += len(chunk)
		}
		l.logger.Info("Appended sentiment rows", "table", table.Name, "rows", committed)
		return committed, nil

	default:
		return 0, fmt.Errorf("unknown sentiment policy %q", policy)
	}
}

// writeChunk writes one chunk in its own transaction. Either every row in
// the chunk is persisted or none is.
func (l *Loader) writeChunk(table records.Table, chunk records.Batch, verb string) error {
	tx, err := l.db.DB.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := execInsert(tx, table, chunk, verb); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func execInsert(tx *sql.Tx, table records.Table, chunk records.Batch, verb string) error {
	if len(chunk) == 0 {
		return nil
	}

	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?,", len(table.Columns)), ",") + ")"
	rowsSQL := strings.TrimSuffix(strings.Repeat(placeholders+",", len(chunk)), ",")
	query := fmt.Sprintf("%s %s (%s) VALUES %s;",
		verb, table.Name, strings.Join(table.Columns, ", "), rowsSQL)

	args := make([]any, 0, len(chunk)*len(table.Columns))
	for _, row := range chunk {
		for _, col := range table.Columns {
			v := row[col]
			if records.IsNull(v) {
				args = append(args, nil)
			} else {
				args = append(args, v)
			}
		}
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to execute %s into %s: %w", strings.ToLower(verb), table.Name, err)
	}
	return nil
}

// dedupeByKey keeps the last occurrence of each natural key, preserving the
// relative order of the surviving rows.
func dedupeByKey(batch records.Batch, key []string) records.Batch {
	lastIdx := make(map[string]int, len(batch))
	for i, row := range batch {
		lastIdx[keyOf(row, key)] = i
	}
	if len(lastIdx) == len(batch) {
		return batch
	}
	deduped := make(records.Batch, 0, len(lastIdx))
	for i, row := range batch {
		if lastIdx[keyOf(row, key)] == i {
			deduped = append(deduped, row)
		}
	}
	return deduped
}

func keyOf(row records.Row, key []string) string {
	var sb strings.Builder
	for _, col := range key {
		fmt.Fprintf(&sb, "%v\x00", row[col])
	}
	return sb.String()
}
