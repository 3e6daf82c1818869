package config

import (
	"errors"
	"fmt"
	"os"

	"tempatku/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App         AppConfig        `yaml:"app"`
	Database    DatabaseConfig   `yaml:"database"`
	Redis       RedisConfig      `yaml:"redis"`
	Logging     LoggingConfig    `yaml:"logging"`
	API         APIConfig        `yaml:"api"`
	TimeSources TimeSourceConfig `yaml:"time_sources"`
	Booking     BookingConfig    `yaml:"booking"`
	Telegram    TelegramConfig   `yaml:"telegram"`
	Google      GoogleConfig     `yaml:"google"`
	Monitoring  MonitoringConfig `yaml:"monitoring"`
	Exports     ExportConfig     `yaml:"exports"`
	Admins      []string         `yaml:"admins"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// TimeSourceConfig lists the external clock providers in priority order.
type TimeSourceConfig struct {
	TimeAPIURL      string `yaml:"timeapi_url"`
	WorldTimeAPIURL string `yaml:"worldtimeapi_url"`
	Zone            string `yaml:"zone"`
}

type BookingConfig struct {
	RateLimitBookings int `yaml:"rate_limit_bookings"`
	RateLimitWindow   int `yaml:"rate_limit_window"`
	PlaceCacheTTL     int `yaml:"place_cache_ttl"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
}

type GoogleConfig struct {
	CredentialsFile      string `yaml:"credentials_file"`
	BookingSpreadSheetID string `yaml:"bookings_spreadsheet_id"`
	BookingSheetName     string `yaml:"bookings_sheet_name"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; yaml values reference its variables via ${VAR}.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.API.Enabled && c.API.Auth.Enabled {
		for _, key := range c.API.Auth.APIKeys {
			if key.Key == "" {
				return fmt.Errorf("api key for client %q is empty", key.Name)
			}
		}
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	// Configuring client keys implies auth.
	if len(c.API.Auth.APIKeys) > 0 {
		c.API.Auth.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = 10
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 20
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.TimeSources.TimeAPIURL == "" {
		c.TimeSources.TimeAPIURL = "https://timeapi.io"
	}
	if c.TimeSources.WorldTimeAPIURL == "" {
		c.TimeSources.WorldTimeAPIURL = "https://worldtimeapi.org"
	}
	if c.TimeSources.Zone == "" {
		c.TimeSources.Zone = models.WITAZone
	}

	if c.Booking.RateLimitBookings == 0 {
		c.Booking.RateLimitBookings = models.RateLimitBookings
	}
	if c.Booking.RateLimitWindow == 0 {
		c.Booking.RateLimitWindow = models.RateLimitWindow
	}
	if c.Booking.PlaceCacheTTL == 0 {
		c.Booking.PlaceCacheTTL = models.PlaceCacheTTL
	}

	if c.Google.BookingSheetName == "" {
		c.Google.BookingSheetName = "Bookings"
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
