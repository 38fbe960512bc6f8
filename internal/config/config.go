package config

import "time"

type Config struct {
	Addr              string        `env:"NOTES_WEB_ADDR" env-default:":3333"`
	DBDir             string        `env:"NOTES_WEB_DB_DIR"`
	LogLevel          string        `env:"NOTES_WEB_LOG_LEVEL" env-default:"info"`
	LogPretty         bool          `env:"NOTES_WEB_LOG_PRETTY" env-default:"false"`
	SessionExpiration time.Duration `env:"NOTES_WEB_SESSION_EXPIRATION" env-default:"24h"`
}
