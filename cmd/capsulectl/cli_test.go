package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/timecapsule/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	repomanager.PostgresRepositoryManager
	upCalled   bool
	downCalled bool
	err        error
}

func (f *fakeMigrator) RunMigrations(context.Context, *sql.DB) error {
	f.upCalled = true
	return f.err
}

func (f *fakeMigrator) RollbackMigration(context.Context, *sql.DB) error {
	f.downCalled = true
	return f.err
}

// testEnv wires the CLI to a sqlmock database.
func testEnv(t *testing.T, rm repomanager.RepositoryManager) (*env, sqlmock.Sqlmock, *bytes.Buffer) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	out := &bytes.Buffer{}
	e := &env{
		openDB: func(string) (*sql.DB, error) { return db, nil },
		repoManager: func(db *sql.DB) (repomanager.RepositoryManager, error) {
			if rm != nil {
				return rm, nil
			}
			return repomanager.NewPostgresRepositoryManager(db)
		},
		readPassword: func() (string, error) { return "s3cret", nil },
		stdout:       out,
	}
	return e, mock, out
}

func TestMigrateUpAndDown(t *testing.T) {
	m := &fakeMigrator{}
	e, _, out := testEnv(t, m)

	require.NoError(t, newCLIApp(e).Run([]string{"capsulectl", "migrate", "up"}))
	assert.True(t, m.upCalled)
	assert.Contains(t, out.String(), "migrated")

	require.NoError(t, newCLIApp(e).Run([]string{"capsulectl", "migrate", "down"}))
	assert.True(t, m.downCalled)
}

func TestMigrate_Error(t *testing.T) {
	e, _, _ := testEnv(t, &fakeMigrator{err: errors.New("boom")})

	err := newCLIApp(e).Run([]string{"capsulectl", "migrate", "up"})
	require.EqualError(t, err, "boom")
}

func TestSweep(t *testing.T) {
	e, mock, out := testEnv(t, nil)
	mock.ExpectExec(`UPDATE\s+capsules\s+SET\s+retired\s*=\s*TRUE`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, newCLIApp(e).Run([]string{"capsulectl", "--dsn", "postgres://x", "sweep"}))

	var got map[string]int64
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.EqualValues(t, 4, got["retired"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserAdd(t *testing.T) {
	e, mock, out := testEnv(t, nil)
	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs("alice", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("u-1", time.Now()))

	require.NoError(t, newCLIApp(e).Run([]string{"capsulectl", "user", "add", "--username", "alice"}))

	var got map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "u-1", got["user_id"])
	assert.Equal(t, "alice", got["username"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserAdd_RequiresUsername(t *testing.T) {
	e, _, _ := testEnv(t, nil)

	err := newCLIApp(e).Run([]string{"capsulectl", "user", "add"})
	require.Error(t, err)
}

func TestAttach(t *testing.T) {
	var gotBody []byte
	var gotCT string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer ts.Close()

	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("see you in 2030"), 0o600))

	e, _, out := testEnv(t, nil)
	e.httpClient = ts.Client()

	err := newCLIApp(e).Run([]string{"capsulectl", "attach", "--url", ts.URL + "/up", "--file", path, "--content-type", "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, "see you in 2030", string(gotBody))
	assert.Equal(t, "text/plain", gotCT)

	var got map[string]int64
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.EqualValues(t, len("see you in 2030"), got["uploaded"])
}

func TestAttach_MissingFile(t *testing.T) {
	e, _, _ := testEnv(t, nil)

	err := newCLIApp(e).Run([]string{"capsulectl", "attach", "--url", "http://127.0.0.1:1/up", "--file", filepath.Join(t.TempDir(), "nope")})
	require.ErrorContains(t, err, "open file")
}
