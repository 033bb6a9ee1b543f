package main

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"testing"

	"turso_wallet/internal/db"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	logrus.SetOutput(io.Discard)
	return out.String(), err
}

func TestUpgradeThenVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")
	t.Setenv("TURSO_DATABASE_URL", "file:"+path)
	t.Setenv("TURSO_AUTH_TOKEN", "")
	t.Setenv("LOG_LEVEL", "error")

	_, err := execute(t, "verify")
	assert.Error(t, err, "verify before upgrade should fail")

	_, err = execute(t, "upgrade")
	require.NoError(t, err)
	_, err = execute(t, "upgrade")
	require.NoError(t, err)

	out, err := execute(t, "verify")
	require.NoError(t, err)
	for _, c := range db.UserColumns {
		assert.Contains(t, out, c.Name)
	}
	assert.Contains(t, out, "'Usuario'")
}

func TestVerifyReportsMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")
	t.Setenv("TURSO_DATABASE_URL", "file:"+path)
	t.Setenv("LOG_LEVEL", "error")

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.ExecContext(context.Background(), `CREATE TABLE users (id INTEGER PRIMARY KEY, username TEXT, email TEXT, password_hash TEXT)`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	_, err = execute(t, "verify")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role")

	_, err = execute(t, "upgrade")
	require.NoError(t, err)

	_, err = execute(t, "verify")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created_at")
	assert.NotContains(t, err.Error(), "balance")
}

func TestUpgradeFailsWithoutDatabase(t *testing.T) {
	t.Setenv("TURSO_DATABASE_URL", "")
	t.Setenv("LOG_LEVEL", "panic")

	_, err := execute(t, "upgrade")
	require.Error(t, err)
	assert.ErrorIs(t, err, db.ErrInitialization)
}
