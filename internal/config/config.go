package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	ImageProviderCloudinary = "cloudinary"
	ImageProviderSupabase   = "supabase"
)

type Config struct {
	Port            string
	Environment     string
	LogLevel        string
	MongoDBURI      string
	MongoDBPassword string
	MongoDBDatabase string
	JWTSecret       string
	JWKSURL         string
	SessionTTL      time.Duration
	ImageProvider   string
	CloudinaryName  string
	CloudinaryKey   string
	CloudinarySec   string
	CloudinaryDir   string
	SupabaseURL     string
	SupabaseAnonKey string
	SupabaseBucket  string
	RedisURL        string
	CORSOrigins     []string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnvWithDefault("PORT", "8080"),
		Environment:     getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),
		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBPassword: os.Getenv("MONGODB_PASSWORD"),
		MongoDBDatabase: getEnvWithDefault("MONGODB_DATABASE", "eventful"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWKSURL:         os.Getenv("AUTH_JWKS_URL"),
		ImageProvider:   strings.ToLower(getEnvWithDefault("IMAGE_PROVIDER", ImageProviderCloudinary)),
		CloudinaryName:  os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryKey:   os.Getenv("CLOUDINARY_API_KEY"),
		CloudinarySec:   os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryDir:   getEnvWithDefault("CLOUDINARY_FOLDER", "events"),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_URL_ANON_KEY"),
		SupabaseBucket:  getEnvWithDefault("SUPABASE_BUCKET", "posters"),
		RedisURL:        os.Getenv("REDIS_URL"),
		CORSOrigins:     splitList(getEnvWithDefault("CORS_ORIGINS", "http://localhost:3000")),
	}

	ttl, err := time.ParseDuration(getEnvWithDefault("SESSION_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be a positive duration")
	}
	cfg.SessionTTL = ttl

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MongoDBURI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}
	if strings.Contains(c.MongoDBURI, "<password>") && c.MongoDBPassword == "" {
		return fmt.Errorf("MONGODB_PASSWORD is required when MONGODB_URI has a <password> placeholder")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	switch c.ImageProvider {
	case ImageProviderCloudinary:
		if c.CloudinaryName == "" || c.CloudinaryKey == "" || c.CloudinarySec == "" {
			return fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required")
		}
	case ImageProviderSupabase:
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required")
		}
		if c.SupabaseAnonKey == "" {
			return fmt.Errorf("SUPABASE_URL_ANON_KEY is required")
		}
	default:
		return fmt.Errorf("unsupported IMAGE_PROVIDER %q (expected cloudinary or supabase)", c.ImageProvider)
	}
	return nil
}

// MongoURI returns the connection string with the password placeholder filled in.
func (c *Config) MongoURI() string {
	return strings.Replace(c.MongoDBURI, "<password>", c.MongoDBPassword, 1)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
