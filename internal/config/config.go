package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries everything the entrypoint needs; values come from the
// environment (optionally loaded from .env) with sane local defaults.
type Config struct {
	MySQLDSN        string
	LogLevel        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func Load() *Config {
	return &Config{
		MySQLDSN:        getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/pharmacy?parseTime=true"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 50),
		MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
		ConnMaxLifetime: time.Duration(getIntEnv("DB_CONN_MAX_LIFETIME_MIN", 5)) * time.Minute,
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
