package importer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/playtrace/playtrace/internal/model"
)

// readDuckDB reads the CSV through an in-memory DuckDB instance. All
// columns are read as VARCHAR so the strict timestamp layout check stays
// in one place, identical to the native engine.
func readDuckDB(ctx context.Context, path string, cfg Config) ([]model.Event, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("importer: open duckdb: %w", err)
	}
	defer db.Close()

	query := fmt.Sprintf(
		`SELECT "%s", "%s", "%s" FROM read_csv(?, header = true, all_varchar = true, delim = ?)`,
		cfg.CaseIDColumn, cfg.ActivityColumn, cfg.TimestampColumn,
	)

	rows, err := db.QueryContext(ctx, query, path, string(cfg.Delimiter))
	if err != nil {
		return nil, fmt.Errorf("importer: duckdb read %s: %w", path, err)
	}
	defer rows.Close()

	var events []model.Event
	rowNum := 1
	for rows.Next() {
		rowNum++

		var caseID, activity, rawTS string
		if err := rows.Scan(&caseID, &activity, &rawTS); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedRow, rowNum, err)
		}

		ts, perr := time.Parse(cfg.TimestampFormat, rawTS)
		if perr != nil {
			return nil, fmt.Errorf("%w: row %d: %q", ErrInvalidTimestamp, rowNum, rawTS)
		}

		events = append(events, model.Event{
			CaseID:    caseID,
			Activity:  activity,
			Timestamp: ts,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("importer: duckdb scan %s: %w", path, err)
	}

	return events, nil
}
