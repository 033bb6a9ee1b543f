package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver for local file: URLs
	"github.com/sirupsen/logrus"
	"github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Conn is the process-wide database handle. Create it once at startup with
// Open and release it with Close on shutdown.
type Conn struct {
	SQL *sql.DB  // raw pool, used for DDL
	ORM *gorm.DB // gorm over the same pool, used by the API
}

// Open connects to a Turso/libSQL endpoint (libsql://, https://, wss://...)
// or, for local development, a SQLite file given as a file: URL.
func Open(ctx context.Context, dbURL, authToken string) (*Conn, error) {
	sqlDB, err := openPool(dbURL, authToken)
	if err != nil {
		return nil, initError("connect", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, initError("connect", err)
	}

	orm, err := gorm.Open(sqlite.New(sqlite.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         NewGormLogger(logrus.StandardLogger()),
		TranslateError: true, // UNIQUE violations surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		sqlDB.Close()
		return nil, initError("open orm", err)
	}

	logrus.WithField("endpoint", redact(dbURL)).Info("Connected to database")
	return &Conn{SQL: sqlDB, ORM: orm}, nil
}

// Close closes the underlying pool. It is safe to call on a nil Conn.
func (c *Conn) Close() error {
	if c == nil || c.SQL == nil {
		return nil
	}
	return c.SQL.Close()
}

func openPool(dbURL, authToken string) (*sql.DB, error) {
	if dbURL == "" {
		return nil, errors.New("TURSO_DATABASE_URL is not set")
	}
	if strings.HasPrefix(dbURL, "file:") {
		return sql.Open("sqlite3", dbURL)
	}

	u, err := url.Parse(dbURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	switch u.Scheme {
	case "libsql", "http", "https", "ws", "wss":
		connector, err := libsql.NewConnector(dbURL, libsql.WithAuthToken(authToken))
		if err != nil {
			return nil, err
		}
		return sql.OpenDB(connector), nil
	default:
		return nil, fmt.Errorf("unsupported database url scheme %q", u.Scheme)
	}
}

// redact drops query parameters and credentials so an endpoint can be logged.
func redact(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil || u.Scheme == "file" {
		return strings.SplitN(dbURL, "?", 2)[0]
	}
	u.User = nil
	u.RawQuery = ""
	return u.String()
}
