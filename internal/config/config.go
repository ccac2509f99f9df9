package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values
type Config struct {
	AppPort    string `mapstructure:"APP_PORT"`
	Env        string `mapstructure:"ENV"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBPort     string `mapstructure:"DB_PORT"`
	RedisURL   string `mapstructure:"REDIS_URL"`
	JWTSecret  string `mapstructure:"JWT_SECRET"`

	// Slot policy; varies by deployment, never hard-coded in the engine.
	BusinessHoursStart  int `mapstructure:"BUSINESS_HOURS_START"`
	BusinessHoursEnd    int `mapstructure:"BUSINESS_HOURS_END"`
	SlotDurationMinutes int `mapstructure:"SLOT_DURATION_MINUTES"`
	CancelWindowMinutes int `mapstructure:"CANCEL_WINDOW_MINUTES"`

	DefaultPerPage int `mapstructure:"DEFAULT_PER_PAGE"`
	MaxPerPage     int `mapstructure:"MAX_PER_PAGE"`
}

// Global variable to store configuration
var AppConfig Config

// LoadConfig initializes Viper to load config values from env, file, or defaults
func LoadConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_NAME", "cservice")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379")
	viper.SetDefault("BUSINESS_HOURS_START", 9)
	viper.SetDefault("BUSINESS_HOURS_END", 17)
	viper.SetDefault("SLOT_DURATION_MINUTES", 60)
	viper.SetDefault("CANCEL_WINDOW_MINUTES", 120)
	viper.SetDefault("DEFAULT_PER_PAGE", 20)
	viper.SetDefault("MAX_PER_PAGE", 100)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// SlotDuration returns the configured slot granularity.
func (c Config) SlotDuration() time.Duration {
	return time.Duration(c.SlotDurationMinutes) * time.Minute
}

// CancelWindow returns the protected window before a booking's slot in
// which cancellation is rejected.
func (c Config) CancelWindow() time.Duration {
	return time.Duration(c.CancelWindowMinutes) * time.Minute
}

// IsProduction checks if the environment is production
func (c Config) IsProduction() bool {
	return c.Env == "production"
}
