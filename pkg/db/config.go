package db

import (
	"fmt"
	"net/url"
	"os"
)

// Config holds the Postgres connection settings for the batch history.
// Environment variables: DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME and
// optionally DB_SSLMODE (default: disable).
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// NewConfigFromEnv reads the database settings from the environment.
func NewConfigFromEnv() Config {
	return Config{
		Host:     os.Getenv("DB_HOST"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
	}
}

// Enabled reports whether a database host is configured.
func (c Config) Enabled() bool {
	return c.Host != ""
}

// Validate checks that every required connection setting is present.
func (c Config) Validate() error {
	switch {
	case c.Host == "":
		return fmt.Errorf("db: host is required")
	case c.User == "":
		return fmt.Errorf("db: user is required")
	case c.Name == "":
		return fmt.Errorf("db: database name is required")
	}
	return nil
}

// DSN returns the key/value connection string used by gorm.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

// URL returns the connection URL used by the migrator.
func (c Config) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
