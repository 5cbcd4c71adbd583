package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMigrationPart(t *testing.T) {
	content := `
-- +migrate Up
CREATE TABLE users (id int);
ALTER TABLE users ADD COLUMN name text;

-- +migrate Down
DROP TABLE users;
`
	t.Run("Extract Up", func(t *testing.T) {
		up := extractMigrationPart(content, "Up")
		assert.Contains(t, up, "CREATE TABLE users")
		assert.Contains(t, up, "ALTER TABLE users")
		assert.NotContains(t, up, "DROP TABLE users")
		assert.NotContains(t, up, "-- +migrate Up")
	})

	t.Run("Extract Down", func(t *testing.T) {
		down := extractMigrationPart(content, "Down")
		assert.Contains(t, down, "DROP TABLE users")
		assert.NotContains(t, down, "CREATE TABLE users")
	})

	t.Run("Missing section", func(t *testing.T) {
		assert.Empty(t, extractMigrationPart("-- +migrate Up\nSELECT 1;", "Down"))
	})
}

func writeMigration(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestRunMigrationsUp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	applied := writeMigration(t, dir, "20250101_a.sql", "-- +migrate Up\nCREATE TABLE a (id int);")
	fresh := writeMigration(t, dir, "20250102_b.sql", "-- +migrate Up\nCREATE TABLE b (id int);\n-- +migrate Down\nDROP TABLE b;")

	mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
		WithArgs("20250101_a.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
		WithArgs("20250102_b.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE b").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs("20250102_b.sql").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = runMigrationsUp(context.Background(), db, []string{applied, fresh})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsUp_FailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	file := writeMigration(t, t.TempDir(), "20250101_bad.sql", "-- +migrate Up\nCREATE TABLE broken (;")

	mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
		WithArgs("20250101_bad.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE broken").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err = runMigrationsUp(context.Background(), db, []string{file})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "20250101_bad.sql")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsDown(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	file := writeMigration(t, dir, "20250101_a.sql", "-- +migrate Up\nCREATE TABLE a (id int);\n-- +migrate Down\nDROP TABLE a;")

	mock.ExpectQuery("SELECT version FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("20250101_a.sql"))
	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE a").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM schema_migrations").
		WithArgs("20250101_a.sql").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = runMigrationsDown(context.Background(), db, []string{file})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsDown_NothingApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT version FROM schema_migrations").WillReturnError(sql.ErrNoRows)

	assert.NoError(t, runMigrationsDown(context.Background(), db, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsDown_MissingFile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT version FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("20250109_gone.sql"))

	err = runMigrationsDown(context.Background(), db, []string{"/tmp/20250101_a.sql"})

	assert.EqualError(t, err, "migration file not found for version: 20250109_gone.sql")
}

func TestRun_StatusAndUnknownMode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	writeMigration(t, dir, "20250102_b.sql", "-- +migrate Up\nSELECT 2;")
	writeMigration(t, dir, "20250101_a.sql", "-- +migrate Up\nSELECT 1;")

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("20250101_a.sql"))

	require.NoError(t, run(context.Background(), db, "status", dir))

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	err = run(context.Background(), db, "sideways", dir)
	assert.ErrorContains(t, err, "unknown mode")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShippedMigrationsHaveBothSections(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "migrations", "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		content, err := os.ReadFile(f)
		require.NoError(t, err)
		assert.NotEmpty(t, extractMigrationPart(string(content), "Up"), f)
		assert.NotEmpty(t, extractMigrationPart(string(content), "Down"), f)
	}
}
