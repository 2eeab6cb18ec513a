package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port       string
	DBDSN      string
	APIBaseURL string // empty = local-only mode, no remote mirroring
	APITimeout time.Duration
	LogFile    string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "ferremas.db"
	} // sqlite file in project root
	base := os.Getenv("API_BASE_URL") // e.g. http://api.ferremas.test/api

	timeout := 5 * time.Second
	if ms := os.Getenv("API_TIMEOUT_MS"); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil && n > 0 {
			timeout = time.Duration(n) * time.Millisecond
		}
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./ferremas.log" // default log sink in project root
	}

	cfg := Config{Port: port, DBDSN: dsn, APIBaseURL: base, APITimeout: timeout, LogFile: logFile}
	log.Printf("[config] PORT=%s DB_DSN=%s API_BASE_URL=%s API_TIMEOUT=%s LOG_FILE=%s",
		cfg.Port, cfg.DBDSN, cfg.APIBaseURL, cfg.APITimeout, cfg.LogFile)
	return cfg
}
