package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string        `mapstructure:"APP_PORT"`
	Env               string        `mapstructure:"ENV"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	DatabaseName      string        `mapstructure:"DATABASE_NAME"`
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	JWTTTL            time.Duration `mapstructure:"JWT_TTL"`
	MaxRequestsPerMin int           `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSOrigins       string        `mapstructure:"CORS_ORIGINS"`
	TrustedProxyList  string        `mapstructure:"TRUSTED_PROXIES"`
	DefaultLanguage   string        `mapstructure:"DEFAULT_LANGUAGE"`

	// Redis configuration.
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int           `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB   int           `mapstructure:"REDIS_AUTH_DB"`
	RedisQueueDB  int           `mapstructure:"REDIS_QUEUE_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	// File storage.
	StorageProvider     string `mapstructure:"STORAGE_PROVIDER"`
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	MaxUploadMB         int64  `mapstructure:"MAX_UPLOAD_MB"`

	// Firebase (storage bucket + push).
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseBucket          string `mapstructure:"FIREBASE_BUCKET"`
	PushEnabled             bool   `mapstructure:"PUSH_ENABLED"`

	// Background jobs.
	MaintenanceScanCron      string `mapstructure:"MAINTENANCE_SCAN_CRON"`
	MaintenanceLookaheadDays int    `mapstructure:"MAINTENANCE_LOOKAHEAD_DAYS"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "cityportal")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "720h")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("DEFAULT_LANGUAGE", "en")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_AUTH_DB", 1)
	v.SetDefault("REDIS_QUEUE_DB", 2)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("STORAGE_PROVIDER", "cloudinary")
	v.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	v.SetDefault("CLOUDINARY_API_KEY", "")
	v.SetDefault("CLOUDINARY_API_SECRET", "")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "config/firebase.json")
	v.SetDefault("FIREBASE_BUCKET", "")
	v.SetDefault("PUSH_ENABLED", false)
	v.SetDefault("MAINTENANCE_SCAN_CRON", "0 7 * * *")
	v.SetDefault("MAINTENANCE_LOOKAHEAD_DAYS", 7)
}

// Load reads configuration into cfg using the supplied viper instance.
func Load(v *viper.Viper, cfg *Config) error {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}
	if err := v.Unmarshal(cfg); err != nil {
		return err
	}
	if cfg.MaintenanceScanCron != "" {
		if _, err := cron.ParseStandard(cfg.MaintenanceScanCron); err != nil {
			return fmt.Errorf("invalid MAINTENANCE_SCAN_CRON %q: %w", cfg.MaintenanceScanCron, err)
		}
	}
	if cfg.JWTSecret == "" && cfg.Env == "production" {
		log.Fatal("JWT_SECRET must be set in production")
	}
	return nil
}

func LoadConfig() {
	if err := Load(viper.GetViper(), &AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

func splitList(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func AllowedOrigins() []string {
	out := splitList(AppConfig.CORSOrigins)
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// TrustedProxies lists the proxy IPs or CIDRs whose forwarding headers are believed.
// Empty means the client IP is always the connection's remote address.
func TrustedProxies() []string {
	return splitList(AppConfig.TrustedProxyList)
}

// MaxUploadBytes returns the upload limit in bytes.
func MaxUploadBytes() int64 {
	if AppConfig.MaxUploadMB <= 0 {
		return 20 << 20
	}
	return AppConfig.MaxUploadMB << 20
}
