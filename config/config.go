package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Environment          string
	Prefix               string
	ListenAddr           string
	APIBaseURL           string
	DatabaseURL          string
	RequestTimeout       time.Duration
	RateLimit            float64
	RateBurst            int
	CheckoutPollInterval time.Duration
	CheckoutPollTimeout  time.Duration
	DefaultRangeDays     int
	MaxRangeDays         int
	PurchaseMerge        string
	DefaultLanguage      string
}

var AppConfig *Config

func LoadConfig() {
	_ = godotenv.Load() // Load from .env if it exists, ignore error if not

	AppConfig = &Config{
		Environment:          getEnv("VEHICORE_ENV", "production"),
		Prefix:               getEnv("VEHICORE_PREFIX", "/api"),
		ListenAddr:           getEnv("VEHICORE_LISTEN_ADDR", ":8080"),
		APIBaseURL:           getEnv("VEHICORE_API_BASE_URL", "https://vehicore-api.dev-stage.fyi"),
		DatabaseURL:          getEnv("VEHICORE_DATABASE_URL", "file:vehicore.db?cache=shared&mode=rwc"),
		RequestTimeout:       getEnvDuration("VEHICORE_REQUEST_TIMEOUT", 10*time.Second),
		RateLimit:            getEnvFloat("VEHICORE_RATE_LIMIT", 10),
		RateBurst:            getEnvInt("VEHICORE_RATE_BURST", 5),
		CheckoutPollInterval: getEnvDuration("VEHICORE_CHECKOUT_POLL_INTERVAL", 2*time.Second),
		CheckoutPollTimeout:  getEnvDuration("VEHICORE_CHECKOUT_POLL_TIMEOUT", 20*time.Second),
		DefaultRangeDays:     getEnvInt("VEHICORE_DEFAULT_RANGE_DAYS", 30),
		MaxRangeDays:         getEnvInt("VEHICORE_MAX_RANGE_DAYS", 1830),
		PurchaseMerge:        getEnv("VEHICORE_PURCHASE_MERGE", "reconcile"),
		DefaultLanguage:      getEnv("VEHICORE_LANGUAGE", "en"),
	}

	if AppConfig.RateLimit <= 0 {
		log.Warn().Float64("rate_limit", AppConfig.RateLimit).Msg("VEHICORE_RATE_LIMIT disables client-side rate limiting")
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
