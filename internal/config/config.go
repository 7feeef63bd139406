package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string `mapstructure:"app_name"`
	AppVersion  string `mapstructure:"app_version"`
	Environment string `mapstructure:"environment"`
	HTTPAddr    string `mapstructure:"http_addr"`
	LogLevel    string `mapstructure:"log_level"`

	// PublicBaseURL is the externally reachable origin used when building
	// asset reference URLs. It must never be baked into code.
	PublicBaseURL string `mapstructure:"public_base_url"`
	UploadDir     string `mapstructure:"upload_dir"`

	AuthJWTSecret string `mapstructure:"auth_jwt_secret"`
	AuthJWTIssuer string `mapstructure:"auth_jwt_issuer"`

	DefaultCurrency     string  `mapstructure:"default_currency"`
	DefaultTaxPercent   float64 `mapstructure:"default_tax_percent"`
	DefaultBusinessName string  `mapstructure:"default_business_name"`

	DBType            string `mapstructure:"database_type"`
	DBHost            string `mapstructure:"database_host"`
	DBPort            string `mapstructure:"database_port"`
	DBName            string `mapstructure:"database_name"`
	DBUser            string `mapstructure:"database_user"`
	DBPassword        string `mapstructure:"database_password"`
	DBSSLMode         string `mapstructure:"database_sslmode"`
	DBMaxIdleConn     int    `mapstructure:"database_max_idle_conn"`
	DBMaxOpenConn     int    `mapstructure:"database_max_open_conn"`
	DBConnMaxLifetime int    `mapstructure:"database_conn_max_lifetime"`
	DBConnMaxIdleTime int    `mapstructure:"database_conn_max_idle_time"`
}

// Module wires application configuration.
var Module = fx.Module("config",
	fx.Provide(Load),
)

// Load loads configuration from environment variables and an optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Bind every known key so AutomaticEnv picks them up during Unmarshal.
	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	cfg.AuthJWTSecret = strings.TrimSpace(cfg.AuthJWTSecret)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "billcraft")
	v.SetDefault("app_version", "0.1.0")
	v.SetDefault("environment", "development")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")

	v.SetDefault("public_base_url", "http://localhost:8080")
	v.SetDefault("upload_dir", "uploads")

	v.SetDefault("auth_jwt_secret", "")
	v.SetDefault("auth_jwt_issuer", "")

	v.SetDefault("default_currency", "INR")
	v.SetDefault("default_tax_percent", 18)
	v.SetDefault("default_business_name", "ABC Solutions")

	v.SetDefault("database_type", "sqlite")
	v.SetDefault("database_host", "localhost")
	v.SetDefault("database_port", "5432")
	v.SetDefault("database_name", "")
	v.SetDefault("database_user", "postgres")
	v.SetDefault("database_password", "")
	v.SetDefault("database_sslmode", "disable")
	v.SetDefault("database_max_idle_conn", 2)
	v.SetDefault("database_max_open_conn", 10)
	v.SetDefault("database_conn_max_lifetime", 0)
	v.SetDefault("database_conn_max_idle_time", 0)
}
