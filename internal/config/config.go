package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Pool      PoolConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// PoolConfig holds the lending pool policy: how many devices the pool may
// hold and the daily hour range (inclusive, 24h clock) during which
// checkout requests are admitted.
type PoolConfig struct {
	Capacity          int
	CheckoutOpenHour  int
	CheckoutCloseHour int
}

type RateLimitConfig struct {
	GeneralRPS   float64
	GeneralBurst int
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()

	viper.SetDefault("POOL_CAPACITY", 10)
	viper.SetDefault("CHECKOUT_OPEN_HOUR", 15)
	viper.SetDefault("CHECKOUT_CLOSE_HOUR", 17)
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("RATE_LIMIT_GENERAL_RPS", 20.0)
	viper.SetDefault("RATE_LIMIT_GENERAL_BURST", 40)

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		Pool: PoolConfig{
			Capacity:          viper.GetInt("POOL_CAPACITY"),
			CheckoutOpenHour:  viper.GetInt("CHECKOUT_OPEN_HOUR"),
			CheckoutCloseHour: viper.GetInt("CHECKOUT_CLOSE_HOUR"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
	}

	if err := config.Pool.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (p *PoolConfig) validate() error {
	if p.Capacity <= 0 {
		return fmt.Errorf("POOL_CAPACITY must be positive, got %d", p.Capacity)
	}
	if p.CheckoutOpenHour < 0 || p.CheckoutOpenHour > 23 ||
		p.CheckoutCloseHour < 0 || p.CheckoutCloseHour > 23 {
		return fmt.Errorf("checkout window hours must be within 0..23, got %d..%d",
			p.CheckoutOpenHour, p.CheckoutCloseHour)
	}
	if p.CheckoutOpenHour > p.CheckoutCloseHour {
		return fmt.Errorf("CHECKOUT_OPEN_HOUR (%d) must not be after CHECKOUT_CLOSE_HOUR (%d)",
			p.CheckoutOpenHour, p.CheckoutCloseHour)
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
