package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/bpadilla17/radladder-game/config"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Client wraps the game database. Queries are written with ? placeholders
// and passed through Rebind before execution.
type Client struct {
	db     *sql.DB
	driver string
}

// Open connects to the database selected by cfg.Driver.
func Open(cfg *config.DBConfig) (*Client, error) {
	switch cfg.Driver {
	case DriverPostgres:
		return NewPostgresClient(cfg)
	case DriverSQLite:
		return NewSQLiteClient(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *Client) GetDB() *sql.DB {
	return c.db
}

func (c *Client) Driver() string {
	return c.driver
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Rebind rewrites ? placeholders into the driver's native form.
func (c *Client) Rebind(query string) string {
	if c.driver != DriverPostgres {
		return query
	}
	return rebindDollar(query)
}

func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (c *Client) InitSchema(ctx context.Context) error {
	statements := postgresSchema
	if c.driver == DriverSQLite {
		statements = sqliteSchema
	}

	for _, table := range statements {
		if _, err := c.db.ExecContext(ctx, table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}
	return nil
}
