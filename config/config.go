package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Booking BookingConfig
}

type AppConfig struct {
	Port     string
	Env      string
	Timezone string
	LogLevel string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// BookingConfig tunes slot generation and the booking flow.
type BookingConfig struct {
	LockTTL      time.Duration
	DaysAhead    int
	MaxRangeDays int
	CancelNotice time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_TIMEZONE", "Asia/Jakarta")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "clinic_scheduling")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ACCESS_EXPIRY", "15m")
	v.SetDefault("JWT_REFRESH_EXPIRY", "168h")

	v.SetDefault("BOOKING_LOCK_TTL", "10s")
	v.SetDefault("SLOTS_DAYS_AHEAD", 30)
	v.SetDefault("SLOTS_MAX_RANGE_DAYS", 90)
	v.SetDefault("BOOKING_CANCEL_NOTICE", "24h")
}

// LoadConfig reads .env from the working directory when present and lets
// environment variables override it.
func LoadConfig() (*Config, error) {
	return load(".env")
}

func load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	accessExpiry, err := time.ParseDuration(v.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(v.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	lockTTL, err := time.ParseDuration(v.GetString("BOOKING_LOCK_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_LOCK_TTL: %w", err)
	}

	cancelNotice, err := time.ParseDuration(v.GetString("BOOKING_CANCEL_NOTICE"))
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_CANCEL_NOTICE: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			Timezone: v.GetString("APP_TIMEZONE"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Booking: BookingConfig{
			LockTTL:      lockTTL,
			DaysAhead:    v.GetInt("SLOTS_DAYS_AHEAD"),
			MaxRangeDays: v.GetInt("SLOTS_MAX_RANGE_DAYS"),
			CancelNotice: cancelNotice,
		},
	}

	if cfg.Booking.DaysAhead <= 0 || cfg.Booking.MaxRangeDays <= 0 {
		return nil, errors.New("SLOTS_DAYS_AHEAD and SLOTS_MAX_RANGE_DAYS must be positive")
	}

	return cfg, nil
}

// Location resolves APP_TIMEZONE, falling back to UTC.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DSN builds the key/value connection string used by gorm.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

// URL is the pgx5:// form expected by the golang-migrate pgx driver.
func (c DBConfig) URL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}
