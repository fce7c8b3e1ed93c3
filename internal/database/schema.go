package database

import (
	"context"
	"fmt"
	"strings"
)

// TableNames lists the user tables in the default schema, sorted by name.
// Used by presentation layers and by the agent's schema tools; it never
// goes through the extraction pipeline.
func (d *DB) TableNames(ctx context.Context) ([]string, error) {
	query := `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = $1 AND table_type = 'BASE TABLE'
ORDER BY table_name`
	if d.driver == DriverDuckDB {
		// DuckDB binds positional parameters with ? and defaults to the
		// main schema.
		query = strings.ReplaceAll(query, "$1", "?")
	}

	rows, err := d.db.QueryContext(ctx, query, d.defaultSchema())
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table names: %w", err)
	}
	return names, nil
}

// TableInfo renders the schema of every user table as DDL-shaped text.
// The same text is handed to the agent as schema context and to the
// dashboard's schema panel.
func (d *DB) TableInfo(ctx context.Context) (string, error) {
	query := `
SELECT table_name, column_name, data_type, is_nullable
FROM information_schema.columns
WHERE table_schema = $1
ORDER BY table_name, ordinal_position`
	if d.driver == DriverDuckDB {
		query = strings.ReplaceAll(query, "$1", "?")
	}

	rows, err := d.db.QueryContext(ctx, query, d.defaultSchema())
	if err != nil {
		return "", fmt.Errorf("describe tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var builder strings.Builder
	currentTable := ""
	first := true
	for rows.Next() {
		var table, column, dataType, nullable string
		if err := rows.Scan(&table, &column, &dataType, &nullable); err != nil {
			return "", fmt.Errorf("scan column row: %w", err)
		}
		if table != currentTable {
			if currentTable != "" {
				builder.WriteString("\n);\n")
			}
			if !first {
				builder.WriteString("\n")
			}
			fmt.Fprintf(&builder, "CREATE TABLE %s (", table)
			currentTable = table
			first = false
		} else {
			builder.WriteString(",")
		}
		fmt.Fprintf(&builder, "\n\t%s %s", column, dataType)
		if strings.EqualFold(nullable, "NO") {
			builder.WriteString(" NOT NULL")
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate column rows: %w", err)
	}
	if currentTable != "" {
		builder.WriteString("\n);\n")
	}
	return builder.String(), nil
}

func (d *DB) defaultSchema() string {
	if d.driver == DriverDuckDB {
		return "main"
	}
	return "public"
}
