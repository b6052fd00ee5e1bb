package config

import (
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション設定を表す
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Hold     HoldConfig
	Auth     AuthConfig
	Broker   BrokerConfig
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig はデータベース設定
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig はRedis設定
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// HoldConfig は座席ホールドのライフサイクル設定
type HoldConfig struct {
	// TTL はホールド作成から期限切れまでの時間
	TTL time.Duration
	// SweepInterval は期限切れホールド回収の実行間隔
	SweepInterval time.Duration
	// LockTTL はホールド作成時のイベント単位ロックの有効期限
	LockTTL time.Duration
	// RateLimitPerMinute はユーザーごとの1分あたりホールド作成上限
	RateLimitPerMinute int
}

// AuthConfig は認証設定
type AuthConfig struct {
	JWTSecret string
}

// BrokerConfig はメッセージブローカー設定
type BrokerConfig struct {
	URL      string
	Exchange string
}

// Load は環境変数から設定を読み込む
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "seat_hold"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Hold: HoldConfig{
			TTL:                getDurationEnv("HOLD_TTL", 5*time.Minute),
			SweepInterval:      getDurationEnv("HOLD_SWEEP_INTERVAL", 15*time.Second),
			LockTTL:            getDurationEnv("HOLD_LOCK_TTL", 5*time.Second),
			RateLimitPerMinute: getIntEnv("HOLD_RATE_LIMIT_PER_MINUTE", 5),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-secret"),
		},
		Broker: BrokerConfig{
			URL:      getEnv("BROKER_URL", ""),
			Exchange: getEnv("BROKER_EXCHANGE", "reservations"),
		},
	}
}

// DSN はPostgreSQL接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
