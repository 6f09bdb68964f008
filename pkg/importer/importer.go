// Package importer loads achievement telemetry CSV files into event logs.
//
// The input format is CaseId,Activity,Timestamp with timestamps in
// "YYYY-MM-DD HH:MM:SS". Events are sorted by timestamp ascending before
// conversion to traces; trace order is the first appearance of each case
// in the sorted stream. Malformed rows and timestamps are fatal at import
// time, before any filter runs.
package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/playtrace/playtrace/internal/model"
)

// Engine selects the CSV reading implementation.
type Engine string

const (
	// EngineNative is the byte-level Go scanner.
	EngineNative Engine = "native"
	// EngineDuckDB reads through an in-memory DuckDB instance.
	EngineDuckDB Engine = "duckdb"
)

// DefaultTimestampFormat is the telemetry exporter's timestamp layout.
const DefaultTimestampFormat = "2006-01-02 15:04:05"

// Config controls CSV import.
type Config struct {
	Engine          Engine
	Delimiter       byte
	CaseIDColumn    string
	ActivityColumn  string
	TimestampColumn string
	TimestampFormat string
}

// DefaultConfig returns the configuration matching the telemetry
// exporter's output.
func DefaultConfig() Config {
	return Config{
		Engine:          EngineNative,
		Delimiter:       ',',
		CaseIDColumn:    "CaseId",
		ActivityColumn:  "Activity",
		TimestampColumn: "Timestamp",
		TimestampFormat: DefaultTimestampFormat,
	}
}

var (
	// ErrMissingColumn is returned when the header lacks a required
	// column.
	ErrMissingColumn = errors.New("importer: missing required column")

	// ErrMalformedRow is returned for rows with too few fields.
	ErrMalformedRow = errors.New("importer: malformed row")

	// ErrInvalidTimestamp is returned for unparseable timestamps.
	ErrInvalidTimestamp = errors.New("importer: invalid timestamp")
)

// Import reads the CSV at path with the configured engine.
func Import(ctx context.Context, path string, cfg Config) (*model.EventLog, error) {
	var (
		events []model.Event
		err    error
	)
	switch cfg.Engine {
	case EngineDuckDB:
		events, err = readDuckDB(ctx, path, cfg)
	case EngineNative, "":
		events, err = readNative(ctx, path, cfg)
	default:
		return nil, fmt.Errorf("importer: unknown engine %q", cfg.Engine)
	}
	if err != nil {
		return nil, err
	}
	return buildLog(path, events), nil
}

// buildLog sorts events by timestamp and groups them into traces,
// preserving the first-seen case order of the sorted stream.
func buildLog(source string, events []model.Event) *model.EventLog {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	log := &model.EventLog{
		Meta: model.Metadata{
			Attributes: map[string]string{"source": source},
		},
	}

	index := make(map[string]int)
	for _, e := range events {
		i, ok := index[e.CaseID]
		if !ok {
			i = len(log.Traces)
			index[e.CaseID] = i
			log.Append(model.Trace{CaseID: e.CaseID})
		}
		log.Traces[i].Events = append(log.Traces[i].Events, e)
	}
	return log
}
