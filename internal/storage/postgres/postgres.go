package postgres

import (
	"context"
	"fmt"
	"github.com/jackc/pgx/v5/pgxpool"
	"os"
)

// Private config for using inside postgres storage and open connections
type config struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// Simple helper function to read an environment or return a default value
func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// Init initialize config instance
func (c *config) init() {
	c.Host = getEnv("DB_HOST", "localhost")
	c.Port = getEnv("DB_PORT", "5432")
	c.Username = getEnv("DB_USER", "postgres")
	c.Password = getEnv("DB_PASS", "postgres")
	c.Database = getEnv("DB_NAME", "idp_db")
}

// Storage instance for processing sql queries
type Storage struct {
	conf config
	Pool *pgxpool.Pool
}

// New initialize an instance of storage db context.
// An explicit conn string wins over the DB_* environment.
func New(ctx context.Context, connString string) (*Storage, error) {
	conf := config{}
	conf.init()
	if connString == "" {
		connString = getConnString(conf)
	}
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	return &Storage{conf: conf, Pool: pool}, nil
}

// CloseStorage ends database pool connection
func (s *Storage) CloseStorage() {
	s.Pool.Close()
}

// getConnString Constructing database connection string
func getConnString(conf config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		conf.Username, conf.Password, conf.Host, conf.Port, conf.Database)
}
