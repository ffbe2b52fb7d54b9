package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreMySQL  = "mysql"
)

type Config struct {
	AppPort string

	StoreDriver string
	SQLitePath  string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	// RedisAddr empty disables request idempotency.
	RedisAddr string
	RedisPass string
	RedisDB   int

	IdempTTLSecs int

	TelegramToken string
	TelegramDebug bool
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort:     getenv("APP_PORT", "8080"),
		StoreDriver: getenv("STORE_DRIVER", StoreMemory),
		SQLitePath:  getenv("SQLITE_PATH", "lending.db"),
		MySQLHost:   getenv("MYSQL_HOST", "mysql"),
		MySQLPort:   getenv("MYSQL_PORT", "3306"),
		MySQLDB:     getenv("MYSQL_DB", "lending"),
		MySQLUser:   getenv("MYSQL_USER", "lending"),
		MySQLPass:   getenv("MYSQL_PASS", "lending"),

		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RedisPass:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:      getenvInt("REDIS_DB", 0),
		IdempTTLSecs: getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),

		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}
	if v := os.Getenv("TELEGRAM_DEBUG"); v != "" {
		c.TelegramDebug, _ = strconv.ParseBool(v)
	}
	return c
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	case StoreMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want memory, sqlite or mysql)", c.StoreDriver)
	}
	if c.IdempTTLSecs <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL_SECONDS must be positive, got %d", c.IdempTTLSecs)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime for DATETIME columns; clientFoundRows so RowsAffected counts
	// matched rows, which the repository uses to detect unknown ids
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4&clientFoundRows=true",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
