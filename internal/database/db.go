// Package database opens the MySQL connection pool backing the catalog.
package database

import (
	"context"
	"database/sql"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Pool sizing for the catalog workload: requests hold a connection only for
// a single statement (or the short delete cascade transaction), so a small
// pool goes a long way. Idle connections are recycled so long-lived
// deployments do not pin stale sockets through MySQL's wait_timeout.
const (
	maxOpenConns    = 16
	maxIdleConns    = 8
	connMaxLifetime = 5 * time.Minute
	connMaxIdleTime = 2 * time.Minute
)

// Open builds the DSN through the driver's own config type, opens the pool
// and verifies connectivity. ParseTime maps DATETIME columns onto time.Time
// and Loc pins them to UTC, matching the timestamps the repositories store.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = pass
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, port)
	cfg.DBName = name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
