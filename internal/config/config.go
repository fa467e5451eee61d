package config

import "os"

type Config struct {
	Addr string
	// DatabaseURL empty means the in-memory store; fine for development,
	// lobby state then dies with the process.
	DatabaseURL string
	JWTSecret   string
}

func Load() *Config {
	return &Config{
		Addr:        getEnv("ADDR", ":8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
