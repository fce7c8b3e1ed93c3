// Package export renders a materialized query result in downloadable
// formats.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/sqlsage/sqlsage/internal/database"
)

const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// ContentType returns the MIME type served for a format, or false for
// an unknown format.
func ContentType(format string) (string, bool) {
	switch format {
	case FormatCSV:
		return "text/csv", true
	case FormatParquet:
		return "application/vnd.apache.parquet", true
	default:
		return "", false
	}
}

// Render encodes a result in the requested format.
func Render(format string, result database.Result) ([]byte, error) {
	switch format {
	case FormatCSV:
		return EncodeCSV(result)
	case FormatParquet:
		return EncodeParquet(result)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func EncodeCSV(result database.Result) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	writer := csv.NewWriter(buf)

	if err := writer.Write(result.Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range result.Rows {
		record := make([]string, len(row))
		for i, value := range row {
			record[i] = renderCell(value)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeParquet writes the result with a schema derived from the column
// list. Result sets have driver-dependent value types, so every cell is
// stored as an optional string.
func EncodeParquet(result database.Result) ([]byte, error) {
	if len(result.Columns) == 0 {
		return nil, fmt.Errorf("result has no columns")
	}
	group := parquet.Group{}
	for _, column := range result.Columns {
		if _, exists := group[column]; exists {
			return nil, fmt.Errorf("duplicate column name %q", column)
		}
		group[column] = parquet.Optional(parquet.String())
	}
	schema := parquet.NewSchema("result", group)

	rows := make([]map[string]any, 0, len(result.Rows))
	for _, row := range result.Rows {
		record := make(map[string]any, len(row))
		for i, value := range row {
			if value == nil {
				record[result.Columns[i]] = nil
				continue
			}
			record[result.Columns[i]] = renderCell(value)
		}
		rows = append(rows, record)
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[map[string]any](buf, schema)
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			return nil, fmt.Errorf("write parquet rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

func renderCell(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}
