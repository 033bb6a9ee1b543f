package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Querier is the subset of *sql.DB the schema code needs.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ColumnDescriptor is one row of PRAGMA table_info.
type ColumnDescriptor struct {
	CID        int
	Name       string
	Type       string
	NotNull    bool
	Default    sql.NullString
	PrimaryKey bool
}

// DescribeTable returns the live column list of table. A table that does not
// exist yields an empty list, not an error.
func DescribeTable(ctx context.Context, q Querier, table string) ([]ColumnDescriptor, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	defer rows.Close()

	var cols []ColumnDescriptor
	for rows.Next() {
		var (
			c       ColumnDescriptor
			notNull int64
			pk      int64
		)
		if err := rows.Scan(&c.CID, &c.Name, &c.Type, &notNull, &c.Default, &pk); err != nil {
			return nil, fmt.Errorf("scan %s column: %w", table, err)
		}
		c.NotNull = notNull != 0
		c.PrimaryKey = pk != 0
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	return cols, nil
}

// HasColumn reports whether cols contains a column with exactly this name.
func HasColumn(cols []ColumnDescriptor, name string) bool {
	for _, c := range cols {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Drift is a difference between the expected and live users schema.
type Drift struct {
	Column   string
	Missing  bool
	Expected string // expected declared type
	Actual   string // live declared type, empty when missing
}

// CompareColumns checks live columns against UserColumns. Declared types are
// compared case-insensitively; extra live columns are ignored.
func CompareColumns(live []ColumnDescriptor) []Drift {
	byName := make(map[string]ColumnDescriptor, len(live))
	for _, c := range live {
		byName[c.Name] = c
	}

	var drift []Drift
	for _, want := range UserColumns {
		got, ok := byName[want.Name]
		if !ok {
			drift = append(drift, Drift{Column: want.Name, Missing: true, Expected: want.Type})
			continue
		}
		if !strings.EqualFold(got.Type, want.Type) {
			drift = append(drift, Drift{Column: want.Name, Expected: want.Type, Actual: got.Type})
		}
	}
	return drift
}
