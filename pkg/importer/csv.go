package importer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/playtrace/playtrace/internal/model"
)

// readNative parses the CSV with byte-level scanning. Quoted fields with
// embedded delimiters and escaped quotes are handled; any structural or
// timestamp error aborts the import with the offending line number.
func readNative(ctx context.Context, path string, cfg Config) ([]model.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("importer: open %s: %w", path, err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)

	headerLine, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("importer: read header: %w", err)
	}
	headerLine = trimLineEnding(headerLine)
	if len(headerLine) == 0 {
		return nil, fmt.Errorf("importer: %s: empty header", path)
	}

	columns := parseCSVLine(headerLine, cfg.Delimiter)
	colMap := make(map[string]int, len(columns))
	for i, col := range columns {
		colMap[string(col)] = i
	}

	caseIdx, ok := colMap[cfg.CaseIDColumn]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, cfg.CaseIDColumn)
	}
	actIdx, ok := colMap[cfg.ActivityColumn]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, cfg.ActivityColumn)
	}
	tsIdx, ok := colMap[cfg.TimestampColumn]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, cfg.TimestampColumn)
	}

	var events []model.Event
	lineNum := 1
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line, err := reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("importer: read line %d: %w", lineNum+1, err)
		}
		if len(line) == 0 && err == io.EOF {
			break
		}
		lineNum++

		line = trimLineEnding(line)
		if len(line) == 0 {
			if err == io.EOF {
				break
			}
			continue
		}

		fields := parseCSVLine(line, cfg.Delimiter)
		if len(fields) <= caseIdx || len(fields) <= actIdx || len(fields) <= tsIdx {
			return nil, fmt.Errorf("%w: line %d has %d fields", ErrMalformedRow, lineNum, len(fields))
		}

		ts, perr := time.Parse(cfg.TimestampFormat, string(fields[tsIdx]))
		if perr != nil {
			return nil, fmt.Errorf("%w: line %d: %q", ErrInvalidTimestamp, lineNum, fields[tsIdx])
		}

		events = append(events, model.Event{
			CaseID:    string(fields[caseIdx]),
			Activity:  string(fields[actIdx]),
			Timestamp: ts,
		})

		if err == io.EOF {
			break
		}
	}

	return events, nil
}

// parseCSVLine splits a line on the delimiter, honoring quoted fields.
func parseCSVLine(line []byte, delim byte) [][]byte {
	if len(line) == 0 {
		return nil
	}

	fields := make([][]byte, 0, 4)
	start := 0
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '"' {
			if !inQuotes {
				inQuotes = true
			} else if i+1 < len(line) && line[i+1] == '"' {
				i++ // escaped quote
			} else {
				inQuotes = false
			}
		} else if c == delim && !inQuotes {
			fields = append(fields, unquoteField(line[start:i]))
			start = i + 1
		}
	}
	fields = append(fields, unquoteField(line[start:]))

	return fields
}

// unquoteField removes surrounding quotes and unescapes embedded quotes.
func unquoteField(field []byte) []byte {
	if len(field) < 2 || field[0] != '"' || field[len(field)-1] != '"' {
		return field
	}
	field = field[1 : len(field)-1]
	result := make([]byte, 0, len(field))
	for i := 0; i < len(field); i++ {
		if field[i] == '"' && i+1 < len(field) && field[i+1] == '"' {
			result = append(result, '"')
			i++
		} else {
			result = append(result, field[i])
		}
	}
	return result
}

// trimLineEnding removes trailing \n and \r characters.
func trimLineEnding(line []byte) []byte {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}
