package config

import (
	"log"
	"os"
	"time"
)

type Config struct {
	Port     string
	DBDSN    string
	LogFile  string
	CacheTTL time.Duration
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "orderdesk.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./orderdesk.log"
	}
	ttl := 5 * time.Minute
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			ttl = d
		} else {
			log.Printf("[warn] invalid CACHE_TTL %q, keeping %s", v, ttl)
		}
	}

	cfg := Config{Port: port, DBDSN: dsn, LogFile: logFile, CacheTTL: ttl}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s CACHE_TTL=%s", cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.CacheTTL)
	return cfg
}
