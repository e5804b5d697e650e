package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSingleRow(t *testing.T) {
	query, args, err := NewInsertBuilder("public").
		Insert("id", "name").
		Into("test_cases").
		Values("abc", "t1").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO public.test_cases (id, name) VALUES ($1, $2)", query)
	assert.Equal(t, []interface{}{"abc", "t1"}, args)
}

func TestBuildMultiRowPlaceholdersKeepCounting(t *testing.T) {
	query, args, err := NewInsertBuilder("public").
		Insert("id", "name", "author").
		Into("test_cases").
		Values("a", "t1", "A").
		Values("b", "t2", "B").
		Build()
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO public.test_cases (id, name, author) VALUES ($1, $2, $3), ($4, $5, $6)",
		query)
	assert.Len(t, args, 6)
}

func TestBuildOnConflictDoNothing(t *testing.T) {
	query, _, err := NewInsertBuilder("public").
		Insert("assignment", "name").
		Into("test_cases").
		Values("hw1", "t1").
		OnConflict("assignment", "name").
		DoNothing().
		Build()
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO public.test_cases (assignment, name) VALUES ($1, $2) ON CONFLICT (assignment, name) DO NOTHING",
		query)
}

func TestBuildOnConflictWithoutDoNothingOmitted(t *testing.T) {
	query, _, err := NewInsertBuilder("public").
		Insert("name").
		Into("test_cases").
		Values("t1").
		OnConflict("name").
		Build()
	require.NoError(t, err)
	assert.NotContains(t, query, "ON CONFLICT")
}

func TestBuildMissingTable(t *testing.T) {
	_, _, err := NewInsertBuilder("public").
		Insert("name").
		Values("t1").
		Build()
	require.Error(t, err)
}

func TestBuildNoRows(t *testing.T) {
	_, _, err := NewInsertBuilder("public").
		Insert("name").
		Into("test_cases").
		Build()
	require.Error(t, err)
}

func TestBuildRowArityMismatch(t *testing.T) {
	_, _, err := NewInsertBuilder("public").
		Insert("id", "name").
		Into("test_cases").
		Values("only-one").
		Build()
	require.Error(t, err)
}
