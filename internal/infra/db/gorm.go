package db

import (
	"fmt"

	"agritrace/internal/config"
	"agritrace/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		return gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
	case config.StoreDriverPostgres:
		return gorm.Open(postgres.Open(PostgresDSN(cfg)), gcfg)
	default:
		return nil, fmt.Errorf("store driver %q has no database", cfg.StoreDriver)
	}
}

// DATABASE_URL があれば最優先で使う
func PostgresDSN(cfg config.Config) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresSSLMode,
	)
}

// 台帳で使うテーブルを作る
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Product{},
		&model.RetailerInfo{},
		&model.DistributorInfo{},
		&model.AnnotationHistory{},
		&model.LedgerTx{},
		&model.Account{},
	)
}
