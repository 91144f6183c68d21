package config

import (
	"log"
	"os"
	"time"
)

type Config struct {
	Port            string
	UpstreamBaseURL string
	UpstreamTimeout time.Duration
	DBDSN           string
	LogFile         string
	RazorpayKeyID   string
	RazorpaySecret  string
	RazorpayKeyURL  string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := os.Getenv("UPSTREAM_BASE_URL")
	if base == "" {
		base = "http://localhost:3000"
	}
	timeout := 15 * time.Second
	if v := os.Getenv("UPSTREAM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			timeout = d
		}
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "southhorizon.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./southhorizon.log"
	}
	rzpKey := os.Getenv("RAZORPAY_KEY_ID")
	rzpSecret := os.Getenv("RAZORPAY_KEY_SECRET")
	rzpURL := os.Getenv("RAZORPAY_BASE_URL")
	if rzpURL == "" {
		rzpURL = "https://api.razorpay.com"
	}

	cfg := Config{
		Port:            port,
		UpstreamBaseURL: base,
		UpstreamTimeout: timeout,
		DBDSN:           dsn,
		LogFile:         logFile,
		RazorpayKeyID:   rzpKey,
		RazorpaySecret:  rzpSecret,
		RazorpayKeyURL:  rzpURL,
	}
	log.Printf("[config] PORT=%s UPSTREAM_BASE_URL=%s DB_DSN=%s LOG_FILE=%s", cfg.Port, cfg.UpstreamBaseURL, cfg.DBDSN, cfg.LogFile)
	return cfg
}
