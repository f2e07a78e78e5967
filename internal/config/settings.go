package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Settings holds everything the server and admin binaries read from the environment.
type Settings struct {
	HTTPAddr      string `envconfig:"HTTP_ADDR" default:":8080"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"user"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"password"`
	DBName     string `envconfig:"DB_NAME" default:"civictriage"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	RedisAddr          string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword      string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB            int           `envconfig:"REDIS_DB" default:"0"`
	DepartmentCacheTTL time.Duration `envconfig:"DEPARTMENT_CACHE_TTL" default:"5m"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:""`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"72h"`

	LifecyclePolicy string `envconfig:"LIFECYCLE_POLICY" default:"permissive"`
	LocalesDir      string `envconfig:"LOCALES_DIR" default:"internal/localization"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	SubmitRatePerSecond float64 `envconfig:"SUBMIT_RATE_PER_SECOND" default:"1"`
	SubmitBurst         int     `envconfig:"SUBMIT_BURST" default:"5"`
}

// Load reads Settings from the process environment.
func Load() (Settings, error) {
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return s, nil
}

// PostgresDSN builds the key/value DSN expected by gorm.io/driver/postgres.
func (s Settings) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		s.DBHost, s.DBUser, s.DBPassword, s.DBName, s.DBPort, s.DBSSLMode)
}
