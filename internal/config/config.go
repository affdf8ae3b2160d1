package config

import (
	"os"
)

type Config struct {
	Env      string
	HttpPort string
	DBPath   string // used when DBDriver=sqlite
	DBDriver string // sqlite|postgres
	DBDsn    string // used when DBDriver=postgres (e.g., DATABASE_URL)

	// Object store settings
	DefaultRegion  string // fallback region when neither request nor history supplies one
	MediaNamespace string // key prefix: {MediaNamespace}/{userID}/{fileName}
	URLTemplate    string // fmt template with bucket, region, key
	S3Endpoint     string // optional S3-compatible endpoint; empty means AWS
}

func Load() *Config {
	cfg := &Config{
		Env:            getEnv("APP_ENV", "dev"),
		HttpPort:       getEnv("HTTP_PORT", "8080"),
		DBPath:         getEnv("DB_PATH", "data/pagevault.db"),
		DBDriver:       getEnv("DB_DRIVER", "sqlite"),
		DBDsn:          getEnv("DATABASE_URL", getEnv("DB_DSN", "")),
		DefaultRegion:  getEnv("AWS_DEFAULT_REGION", "us-east-1"),
		MediaNamespace: getEnv("MEDIA_NAMESPACE", "uploads"),
		URLTemplate:    getEnv("S3_PUBLIC_URL_TEMPLATE", "https://%s.s3.%s.amazonaws.com/%s"),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
