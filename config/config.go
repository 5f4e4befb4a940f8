package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	VNPay    VNPayConfig    `yaml:"vnpay"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
	// VoucherRPS limits voucher lookups per client IP.
	VoucherRPS   float64 `yaml:"voucher_rps"`
	VoucherBurst int     `yaml:"voucher_burst"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
	LiveGroupID        string   `yaml:"live_group_id"`
}

type BookingConfig struct {
	CartTTLMinutes    int    `yaml:"cart_ttl_minutes"`
	RoomsCacheTTL     int    `yaml:"rooms_cache_ttl_seconds"`
	PaymentTTLMinutes int    `yaml:"payment_ttl_minutes"`
	DefaultSource     string `yaml:"default_source"`
}

type VNPayConfig struct {
	PayURL     string `yaml:"pay_url"`
	TmnCode    string `yaml:"tmn_code"`
	HashSecret string `yaml:"hash_secret"`
	ReturnURL  string `yaml:"return_url"`
	Locale     string `yaml:"locale"`
}

type RealtimeConfig struct {
	// RefreshPolicy is "hold_while_editing" or "last_write_wins".
	RefreshPolicy string `yaml:"refresh_policy"`
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// LoadConfig reads the YAML file at path, applies environment overrides
// (a .env file next to the binary is honoured) and fills defaults.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DATABASE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("DATABASE_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DATABASE_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("VNPAY_TMN_CODE"); v != "" {
		cfg.VNPay.TmnCode = v
	}
	if v := os.Getenv("VNPAY_HASH_SECRET"); v != "" {
		cfg.VNPay.HashSecret = v
	}
	if v := os.Getenv("VNPAY_RETURN_URL"); v != "" {
		cfg.VNPay.ReturnURL = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.HTTP.VoucherRPS <= 0 {
		cfg.HTTP.VoucherRPS = 2
	}
	if cfg.HTTP.VoucherBurst <= 0 {
		cfg.HTTP.VoucherBurst = 5
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Booking.CartTTLMinutes <= 0 {
		cfg.Booking.CartTTLMinutes = 24 * 60
	}
	if cfg.Booking.RoomsCacheTTL <= 0 {
		cfg.Booking.RoomsCacheTTL = 60
	}
	if cfg.Booking.PaymentTTLMinutes <= 0 {
		cfg.Booking.PaymentTTLMinutes = 15
	}
	if cfg.Booking.DefaultSource == "" {
		cfg.Booking.DefaultSource = "website"
	}
	if cfg.VNPay.Locale == "" {
		cfg.VNPay.Locale = "vn"
	}
	if cfg.Realtime.RefreshPolicy == "" {
		cfg.Realtime.RefreshPolicy = "hold_while_editing"
	}
	if cfg.Worker.ExpirationSweepMinutes <= 0 {
		cfg.Worker.ExpirationSweepMinutes = 1
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
