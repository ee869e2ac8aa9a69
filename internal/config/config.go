package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// 保存先
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

// 注記・登録の権限チェック
const (
	AccessModeStrict     = "strict"
	AccessModePermissive = "permissive"
)

// Configはアプリ全体の設定
type Config struct {
	Port string `yaml:"port"` // サーバーポート（8080）

	StoreDriver string `yaml:"store_driver"` // postgres / sqlite / memory

	DatabaseURL      string `yaml:"database_url"`      // あれば POSTGRES_* より優先
	PostgresUser     string `yaml:"postgres_user"`     // DBユーザー
	PostgresPassword string `yaml:"postgres_password"` // DBパスワード
	PostgresDB       string `yaml:"postgres_db"`       // DB名
	PostgresHost     string `yaml:"postgres_host"`     // DBホスト（localhost）
	PostgresPort     int    `yaml:"postgres_port"`     // DBポート（5432）
	PostgresSSLMode  string `yaml:"postgres_sslmode"`
	SQLitePath       string `yaml:"sqlite_path"`

	JWTSecret string `yaml:"jwt_secret"` // JWT署名シークレット

	GoEnv string `yaml:"go_env"` // dev/prod
	FEURL string `yaml:"fe_url"` // フロントURL（CORS）

	AccessMode string `yaml:"access_mode"` // strict / permissive

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"` // 空ならstdoutのみ

	WriteRatePerMinute int    `yaml:"write_rate_per_minute"` // 0なら無制限
	ChainVerifySpec    string `yaml:"chain_verify_spec"`     // cron式。空なら無効
}

func defaults() Config {
	return Config{
		Port:               "8080",
		StoreDriver:        StoreDriverPostgres,
		PostgresHost:       "localhost",
		PostgresPort:       5432,
		PostgresSSLMode:    "disable",
		SQLitePath:         "agritrace.db",
		GoEnv:              "dev",
		AccessMode:         AccessModeStrict,
		LogLevel:           "info",
		WriteRatePerMinute: 60,
		ChainVerifySpec:    "@every 10m",
	}
}

// Loadは CONFIG_FILE（YAML）→ 環境変数 の順に読む。環境変数が勝つ
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.StoreDriver, "STORE_DRIVER")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.PostgresUser, "POSTGRES_USER")
	setString(&cfg.PostgresPassword, "POSTGRES_PASSWORD")
	setString(&cfg.PostgresDB, "POSTGRES_DB")
	setString(&cfg.PostgresHost, "POSTGRES_HOST")
	setString(&cfg.PostgresSSLMode, "POSTGRES_SSLMODE")
	setString(&cfg.SQLitePath, "SQLITE_PATH")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.GoEnv, "GO_ENV")
	setString(&cfg.FEURL, "FE_URL")
	setString(&cfg.AccessMode, "LEDGER_ACCESS_MODE")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFile, "LOG_FILE")
	setString(&cfg.ChainVerifySpec, "CHAIN_VERIFY_SPEC")

	if err := setInt(&cfg.PostgresPort, "POSTGRES_PORT"); err != nil {
		return err
	}
	if err := setInt(&cfg.WriteRatePerMinute, "WRITE_RATE_PER_MINUTE"); err != nil {
		return err
	}
	return nil
}

// Validateは必須チェック
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.GoEnv == "" {
		return fmt.Errorf("GO_ENV is required")
	}

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			if c.PostgresUser == "" {
				return fmt.Errorf("POSTGRES_USER is required")
			}
			if c.PostgresPassword == "" {
				return fmt.Errorf("POSTGRES_PASSWORD is required")
			}
			if c.PostgresDB == "" {
				return fmt.Errorf("POSTGRES_DB is required")
			}
			if c.PostgresHost == "" {
				return fmt.Errorf("POSTGRES_HOST is required")
			}
		}
	case StoreDriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of postgres, sqlite, memory: %q", c.StoreDriver)
	}

	switch c.AccessMode {
	case AccessModeStrict, AccessModePermissive:
	default:
		return fmt.Errorf("LEDGER_ACCESS_MODE must be strict or permissive: %q", c.AccessMode)
	}

	if c.WriteRatePerMinute < 0 {
		return fmt.Errorf("WRITE_RATE_PER_MINUTE must be >= 0")
	}
	return nil
}

// ListenAddrは PORT を ":8080" 形式にする
func (c Config) ListenAddr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func (c Config) IsProduction() bool {
	return c.GoEnv == "prod" || c.GoEnv == "production"
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s must be number: %w", key, err)
	}
	*dst = i
	return nil
}
