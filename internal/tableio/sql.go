package tableio

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// Database drivers for SQL sources.
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/spf13/cast"

	"github.com/nao1215/tabclean/internal/frame"
)

// Driver names accepted by OpenSQL.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// OpenSQL connects to a database and reads the result of query.
func OpenSQL(ctx context.Context, driver, dsn, query string, args ...any) (*frame.Table, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrNoQuery
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	defer db.Close()

	return ReadSQL(ctx, db, query, args...)
}

// ReadSQL runs query and reads every returned row into a table. Column
// names come from the result set. Driver values are normalized: byte slices
// become text and decimal columns become floats.
func ReadSQL(ctx context.Context, db *sql.DB, query string, args ...any) (*frame.Table, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrNoQuery
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	values := make([][]any, len(types))
	dest := make([]any, len(types))
	for rows.Next() {
		raw := make([]any, len(types))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range raw {
			values[i] = append(values[i], sqlValue(v, types[i].DatabaseTypeName()))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	columns := make([]*frame.Column, len(types))
	for i, ct := range types {
		if values[i] == nil {
			values[i] = []any{}
		}
		columns[i] = frame.NewColumn(ct.Name(), values[i]...)
	}
	return frame.New(columns...)
}

// sqlValue converts a scanned driver value to a cell.
func sqlValue(v any, dbType string) any {
	if v == nil {
		return frame.NA
	}
	switch strings.ToUpper(dbType) {
	case "DECIMAL", "NUMERIC", "MONEY", "REAL", "FLOAT", "DOUBLE", "FLOAT4", "FLOAT8":
		if f, err := cast.ToFloat64E(text(v)); err == nil {
			return f
		}
	case "INT", "INTEGER", "INT2", "INT4", "INT8", "BIGINT", "SMALLINT":
		if n, err := cast.ToInt64E(text(v)); err == nil {
			return n
		}
	case "BOOL", "BOOLEAN":
		if b, err := cast.ToBoolE(text(v)); err == nil {
			return b
		}
	}
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x
	}
	return v
}

// text returns byte slices as strings and leaves other values alone.
func text(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
