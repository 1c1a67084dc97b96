package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"schema/0001_tenants.sql":  {Data: []byte("CREATE TABLE tenants (id TEXT)")},
		"schema/0002_profiles.sql": {Data: []byte("CREATE TABLE profiles (id TEXT)")},
		"schema/README.md":         {Data: []byte("ignored")},
	}
}

func TestMigrator_ParseMigrationsSorted(t *testing.T) {
	m := NewMigrator(testMigrations(), "schema")
	migs, err := m.ParseMigrations()
	require.NoError(t, err)
	require.Len(t, migs, 2)
	assert.Equal(t, 1, migs[0].Version)
	assert.Equal(t, "tenants", migs[0].Name)
	assert.Equal(t, 2, migs[1].Version)
}

func TestMigrator_RunAppliesOnlyPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS _migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM _migrations")).
		WillReturnRows(pgxmock.NewRows([]string{"version"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE profiles (id TEXT)")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO _migrations (version, name) VALUES ($1, $2)")).
		WithArgs(2, "profiles").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	res, err := NewMigrator(testMigrations(), "schema").Run(context.Background(), mock)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, res.Applied)
	assert.Equal(t, []int{1}, res.Skipped)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_RunStopsOnFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS _migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM _migrations")).
		WillReturnRows(pgxmock.NewRows([]string{"version"}))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE tenants (id TEXT)")).
		WillReturnError(errors.New("syntax error"))

	res, err := NewMigrator(testMigrations(), "schema").Run(context.Background(), mock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "applying migration 1_tenants")
	assert.Empty(t, res.Applied)
	require.NoError(t, mock.ExpectationsWereMet())
}
