package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	LogLevel string

	StoreDriver string
	DataFile    string
	DatabaseURL string
	SQLitePath  string

	FirebaseProjectID     string
	FirebaseStorageBucket string

	RabbitMQURL   string
	EventExchange string

	StaticDir string
	AdminPath string

	AllowedOrigins     []string
	RateLimitPerMinute int
}

func LoadEnv() error {
	// .env is optional; in production variables are set directly
	if err := godotenv.Load(); err != nil {
		return nil
	}
	return nil
}

func Load() Config {
	return Config{
		Port:     GetEnv("PORT", "3000"),
		LogLevel: GetEnv("LOG_LEVEL", "info"),

		StoreDriver: strings.ToLower(GetEnv("STORE_DRIVER", "file")),
		DataFile:    GetEnv("DATA_FILE", "data/db.json"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  GetEnv("SQLITE_PATH", "data/milk.db"),

		FirebaseProjectID:     os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseStorageBucket: os.Getenv("FIREBASE_STORAGE_BUCKET"),

		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
		EventExchange: GetEnv("EVENT_EXCHANGE", "milk_events"),

		StaticDir: GetEnv("STATIC_DIR", "public"),
		AdminPath: normalisePath(GetEnv("ADMIN_PATH", "/panel-milk-admin")),

		AllowedOrigins:     CSV(os.Getenv("FRONTEND_URL") + "," + os.Getenv("ADMIN_URL")),
		RateLimitPerMinute: GetEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}
}

// ValidateEnv checks the variables the selected store driver cannot work
// without. Optional integrations only produce warnings.
func ValidateEnv() error {
	var missing []string

	switch driver := strings.ToLower(GetEnv("STORE_DRIVER", "file")); driver {
	case "file", "sqlite":
	case "postgres":
		if os.Getenv("DATABASE_URL") == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case "firestore":
		if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" && os.Getenv("FIREBASE_PROJECT_ID") == "" {
			missing = append(missing, "GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_PROJECT_ID")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", driver)
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	if os.Getenv("FIREBASE_STORAGE_BUCKET") == "" {
		slog.Warn("FIREBASE_STORAGE_BUCKET not set - reward icon uploads will fail")
	}
	if os.Getenv("FRONTEND_URL") == "" {
		slog.Warn("FRONTEND_URL not set - CORS may not work correctly")
	}
	if os.Getenv("SMTP_HOST") == "" || os.Getenv("SMTP_FROM") == "" {
		slog.Warn("SMTP_HOST/SMTP_FROM not set - confirmation emails will not be sent")
	}
	if os.Getenv("RABBITMQ_URL") == "" {
		slog.Info("RABBITMQ_URL not set - events stay within this process")
	}

	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("Ignoring non-numeric environment variable", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalisePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}
