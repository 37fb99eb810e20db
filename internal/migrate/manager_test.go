package migrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func writeSQL(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestUpAppliesPendingInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	writeSQL(t, dir, "0001_init.up.sql", "create table a(id text);")
	writeSQL(t, dir, "0002_more.up.sql", "create table b(id text);")

	mock.ExpectExec("create table if not exists schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select name from schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("0001_init.up.sql"))

	// Only the second file is pending.
	mock.ExpectBegin()
	mock.ExpectExec("create table b").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectExec("insert into schema_migrations").WithArgs("0002_more.up.sql").
		WillReturnResult(sqlmock.NewResult(1, 1))

	m := NewManager(db, dir, "")
	require.NoError(t, m.Up(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDownRollsBackLast(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	writeSQL(t, dir, "0001_init.up.sql", "create table a(id text);")
	writeSQL(t, dir, "0001_init.down.sql", "drop table a;")

	mock.ExpectExec("create table if not exists schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select name from schema_migrations order by").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("0001_init.up.sql"))
	mock.ExpectBegin()
	mock.ExpectExec("drop table a").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectExec("delete from schema_migrations").WithArgs("0001_init.up.sql").
		WillReturnResult(sqlmock.NewResult(0, 1))

	m := NewManager(db, dir, "")
	require.NoError(t, m.Down(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDownWithoutHistory(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("create table if not exists schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select name from schema_migrations order by").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	m := NewManager(db, t.TempDir(), "")
	require.Error(t, m.Down(context.Background()))
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements(`insert into t(name) values ('a;b'); create table x(id text);`)
	require.Len(t, stmts, 2)
	require.Contains(t, stmts[0], "a;b")
	require.Contains(t, stmts[1], "create table x")
}
