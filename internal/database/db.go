package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Connection pool sizing. The service is request-bound; two dozen
// connections comfortably covers the 5s-per-request budget the handlers
// enforce.
const (
	maxOpenConns    = 24
	maxIdleConns    = 12
	connMaxLifetime = 30 * time.Minute
	pingTimeout     = 5 * time.Second
)

// buildDSN assembles the MySQL connection string.
//
//	parseTime=true       DATETIME columns scan into time.Time
//	loc=UTC              every timestamp in the system is UTC
//	clientFoundRows=true RowsAffected counts matched rows, not changed
//	                     ones, so repeating an identical update (marking a
//	                     message read twice) is not mistaken for a missing
//	                     row
func buildDSN(user, pass, host, port, name string) string {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	return fmt.Sprintf(
		"%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
		auth, host, port, name)
}

// Open connects to MySQL, configures the pool and verifies the connection
// with a bounded ping.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	db, err := sql.Open("mysql", buildDSN(user, pass, host, port, name))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}
