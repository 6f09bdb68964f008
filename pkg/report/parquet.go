package report

import (
	"fmt"
	"os"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/compress"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"

	"github.com/playtrace/playtrace/internal/model"
)

// parquetBatchSize is the number of events per Arrow record batch.
const parquetBatchSize = 8192

// eventSchema returns the Arrow schema for exported sub-logs.
func eventSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "case_id", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "activity", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "timestamp", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
	}, nil)
}

// SubLog writes a derived event log to a parquet file in the output
// directory, one row per event in trace order. Intermediate results of
// window filters are persisted this way for inspection.
func (w *Writer) SubLog(name string, log *model.EventLog) error {
	path := w.Path(name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	defer f.Close()

	if err := writeParquet(f, log); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	w.files = append(w.files, name)
	return nil
}

type parquetWriter struct {
	schema *arrow.Schema
	writer *pqarrow.FileWriter

	caseIDBuilder    *array.StringBuilder
	activityBuilder  *array.StringBuilder
	timestampBuilder *array.Int64Builder

	rowCount int
}

func writeParquet(f *os.File, log *model.EventLog) error {
	allocator := memory.NewGoAllocator()
	schema := eventSchema()

	writerProps := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithDictionaryDefault(true),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(schema, f, writerProps, arrowProps)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}

	pw := &parquetWriter{
		schema:           schema,
		writer:           writer,
		caseIDBuilder:    array.NewStringBuilder(allocator),
		activityBuilder:  array.NewStringBuilder(allocator),
		timestampBuilder: array.NewInt64Builder(allocator),
	}
	defer pw.release()

	for _, t := range log.Traces {
		for _, e := range t.Events {
			pw.caseIDBuilder.Append(e.CaseID)
			pw.activityBuilder.Append(e.Activity)
			pw.timestampBuilder.Append(e.Timestamp.UnixNano())
			pw.rowCount++

			if pw.rowCount >= parquetBatchSize {
				if err := pw.flushBatch(); err != nil {
					return err
				}
			}
		}
	}

	if err := pw.flushBatch(); err != nil {
		return err
	}
	return writer.Close()
}

func (pw *parquetWriter) flushBatch() error {
	if pw.rowCount == 0 {
		return nil
	}

	caseIDArray := pw.caseIDBuilder.NewArray()
	activityArray := pw.activityBuilder.NewArray()
	timestampArray := pw.timestampBuilder.NewArray()
	defer caseIDArray.Release()
	defer activityArray.Release()
	defer timestampArray.Release()

	batch := array.NewRecord(pw.schema, []arrow.Array{
		caseIDArray,
		activityArray,
		timestampArray,
	}, int64(pw.rowCount))
	defer batch.Release()

	if err := pw.writer.Write(batch); err != nil {
		return fmt.Errorf("write record batch: %w", err)
	}
	pw.rowCount = 0
	return nil
}

func (pw *parquetWriter) release() {
	pw.caseIDBuilder.Release()
	pw.activityBuilder.Release()
	pw.timestampBuilder.Release()
}
