package config

import (
	"os"
	"strconv"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Config struct {
	GoogleClientID      string
	GoogleClientSecret  string
	PostgresURI         string
	RedisURI            string
	R2                  R2
	SecretKey           string
	EncryptionKey       string
	CookieName          string
	ErrorThreshold      int
	RateLimitCooldown   int
	RetentionDays       int
	TokenLookaheadHours int
	StaleJobHours       int
}

func LoadConfig() *Config {
	return &Config{
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		PostgresURI:        getEnv("POSTGRES_URI", ""),
		RedisURI:           getEnv("REDIS_URI", ""),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
		SecretKey:           getEnv("SECRET_KEY", ""),
		EncryptionKey:       getEnv("TOKEN_ENCRYPTION_KEY", ""),
		CookieName:          getEnv("COOKIE_NAME", "socialsync_session"),
		ErrorThreshold:      getEnvInt("SYNC_ERROR_THRESHOLD", 5),
		RateLimitCooldown:   getEnvInt("RATE_LIMIT_COOLDOWN_SECONDS", 3600),
		RetentionDays:       getEnvInt("RETENTION_DAYS", 90),
		TokenLookaheadHours: getEnvInt("TOKEN_REFRESH_LOOKAHEAD_HOURS", 24),
		StaleJobHours:       getEnvInt("STALE_JOB_HOURS", 6),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
