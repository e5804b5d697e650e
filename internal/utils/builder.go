package querybuilder

import (
	"fmt"
	"strings"
)

// InsertRows holds the value tuples of a multi-row insert
type InsertRows [][]interface{}

// InsertBuilder assembles multi-row INSERT statements with PostgreSQL
// positional placeholders ($1, $2, ...).
type InsertBuilder interface {
	Insert(cols ...string) InsertBuilder
	Into(table string) InsertBuilder
	Values(values ...interface{}) InsertBuilder
	OnConflict(cols ...string) InsertBuilder
	DoNothing() InsertBuilder
	Build() (string, []interface{}, error)
}

type insertBuilder struct {
	schema       string
	table        string
	cols         []string
	values       InsertRows
	onConflict   []string
	conflictNoop bool
}

func NewInsertBuilder(schema string) InsertBuilder {
	return &insertBuilder{
		schema: schema,
	}
}

func (b *insertBuilder) Insert(cols ...string) InsertBuilder {
	b.cols = cols
	return b
}

func (b *insertBuilder) Into(table string) InsertBuilder {
	b.table = table
	return b
}

func (b *insertBuilder) Values(values ...interface{}) InsertBuilder {
	b.values = append(b.values, values)
	return b
}

func (b *insertBuilder) OnConflict(cols ...string) InsertBuilder {
	b.onConflict = cols
	return b
}

func (b *insertBuilder) DoNothing() InsertBuilder {
	b.conflictNoop = true
	return b
}

func (b *insertBuilder) Build() (string, []interface{}, error) {
	if b.table == "" || len(b.cols) == 0 {
		return "", nil, fmt.Errorf("insert builder: table and columns are required")
	}
	if len(b.values) == 0 {
		return "", nil, fmt.Errorf("insert builder: no value rows")
	}

	numCols := len(b.cols)
	args := make([]interface{}, 0, len(b.values)*numCols)
	tuples := make([]string, 0, len(b.values))
	placeholders := make([]string, numCols)

	for _, row := range b.values {
		if len(row) != numCols {
			return "", nil, fmt.Errorf("insert builder: row has %d values, want %d", len(row), numCols)
		}
		for i, val := range row {
			args = append(args, val)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		tuples = append(tuples, fmt.Sprintf("(%s)", strings.Join(placeholders, ", ")))
	}

	query := fmt.Sprintf("INSERT INTO %s.%s (%s) VALUES %s",
		b.schema, b.table, strings.Join(b.cols, ", "), strings.Join(tuples, ", "))

	if len(b.onConflict) > 0 && b.conflictNoop {
		query += fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", strings.Join(b.onConflict, ", "))
	}

	return query, args, nil
}
