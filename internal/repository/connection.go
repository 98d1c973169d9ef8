package repository

import (
	"database/sql"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"dynamic-pricing-service/internal/config"
	"dynamic-pricing-service/internal/migrations"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "repository").Logger()

// Connect opens the ledger database and retries the first ping until it answers.
func Connect(cfg config.DatabaseConfig) (*sql.DB, error) {
	driver, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	attempts := max(cfg.ConnectRetries, 1)
	var db *sql.DB
	for i := 0; i < attempts; i++ {
		db, err = sql.Open(driver, dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				logger.Info().Msgf("Connected to %s ledger %s", cfg.Driver, cfg.Name)
				configurePool(db, cfg)
				return db, nil
			}
			db.Close()
		}
		logger.Warn().Err(err).Msgf("Retry %d: failed to connect to %s ledger", i+1, cfg.Driver)
		time.Sleep(cfg.ConnectBackoff)
	}
	return nil, fmt.Errorf("failed to connect to %s ledger after %d attempts: %w", cfg.Driver, attempts, err)
}

func configurePool(db *sql.DB, cfg config.DatabaseConfig) {
	if cfg.Driver == migrations.DialectSQLite {
		// A single connection keeps in-memory databases shared and serializes writers.
		db.SetMaxOpenConns(1)
		return
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(max(cfg.MaxOpenConns/2, 1))
	db.SetConnMaxLifetime(5 * time.Minute)
}

func dataSource(cfg config.DatabaseConfig) (driver, dsn string, err error) {
	switch cfg.Driver {
	case migrations.DialectMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.Loc = time.UTC
		return "mysql", mc.FormatDSN(), nil
	case migrations.DialectSQLite:
		return "sqlite", sqliteDSN(cfg.Path), nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// sqliteDSN stores timestamps as sortable ISO text so range filters compare correctly.
func sqliteDSN(path string) string {
	if strings.Contains(path, "_time_format=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_time_format=sqlite"
}
