package utils

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

type ServerConfig struct {
	HTTPAddr  string
	FeedAddr  string // TCP feed for realtime events
	UDPAddr   string // push-notify registry
	RedisAddr string // empty disables the catalog cache
	GenAPIKey string // X-API-Key expected on generation endpoints
	RateRPS   float64
	RateBurst int
}

// LoadEnv loads a .env file if one is present. Missing files are fine;
// production supplies real env vars.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("load .env: %v", err)
		}
	}
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("CUISINEHUB_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("CUISINEHUB_JWT_ISSUER")
	if issuer == "" {
		issuer = "cuisinehub"
	}

	duration := 24 * time.Hour
	if ttl := os.Getenv("CUISINEHUB_JWT_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil && hours > 0 {
			duration = time.Duration(hours) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: duration,
	}
}

func LoadServerConfig() ServerConfig {
	cfg := ServerConfig{
		HTTPAddr:  envOr("CUISINEHUB_HTTP_ADDR", ":8080"),
		FeedAddr:  envOr("CUISINEHUB_FEED_ADDR", ":7070"),
		UDPAddr:   envOr("CUISINEHUB_NOTIFY_ADDR", ":7071"),
		RedisAddr: os.Getenv("CUISINEHUB_REDIS_ADDR"),
		GenAPIKey: os.Getenv("CUISINEHUB_API_KEY"),
		RateRPS:   10,
		RateBurst: 20,
	}

	if rps := os.Getenv("CUISINEHUB_RATE_RPS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil && v > 0 {
			cfg.RateRPS = v
		}
	}
	if burst := os.Getenv("CUISINEHUB_RATE_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil && v > 0 {
			cfg.RateBurst = v
		}
	}
	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
