// Package db opens the SQLite database shared by the store, migrations and seed.
package db

import (
	"context"
	"database/sql"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// pragmas are applied by the driver to every pooled connection.
var pragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

const pingTimeout = 5 * time.Second

// DSN builds the modernc sqlite data source name for path with the
// connection pragmas attached.
func DSN(path string) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	return path + "?" + q.Encode()
}

// Open opens the database at path and checks it is reachable.
func Open(path string) (*sql.DB, error) {
	database, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, eris.Wrapf(err, "open sqlite database %s", path)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, eris.Wrapf(err, "ping sqlite database %s", path)
	}

	zap.L().Debug("sqlite database opened", zap.String("path", path))
	return database, nil
}
