// Package database opens the gorm connection backing the usage ledger.
package database

import (
	"fmt"
	"time"

	"github.com/tokenlay/tokenlay-go/internal/models"

	"gorm.io/driver/clickhouse"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
	config     models.DatabaseConfig
	driverName string
}

// New opens and pings the database described by config.
func New(config models.DatabaseConfig) (*DB, error) {
	dialector, driverName, err := dialectorFor(config)
	if err != nil {
		return nil, err
	}

	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if config.Type == models.ClickHouse {
		// the ClickHouse driver has incomplete prepared statement support
		gormConfig.PrepareStmt = false
	}

	gormDB, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", config.Type, err)
	}

	db := &DB{
		DB:         gormDB,
		config:     config,
		driverName: driverName,
	}

	db.setConnectionPool()

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping %s: %w", config.Type, err)
	}

	return db, nil
}

func dialectorFor(config models.DatabaseConfig) (gorm.Dialector, string, error) {
	switch config.Type {
	case models.SQLite:
		if config.FilePath == "" {
			return nil, "", fmt.Errorf("file_path is required for SQLite")
		}
		return sqlite.Open(config.FilePath), "sqlite3", nil
	case models.PostgreSQL:
		dsn := config.DSN
		if dsn == "" {
			dsn = fmt.Sprintf(
				"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				config.Host, config.Port, config.Username, config.Password, config.Database, sslMode(config.SSLMode),
			)
		}
		return postgres.Open(dsn), "postgres", nil
	case models.MySQL:
		dsn := config.DSN
		if dsn == "" {
			dsn = fmt.Sprintf(
				"%s:%s@tcp(%s:%d)/%s?parseTime=true",
				config.Username, config.Password, config.Host, config.Port, config.Database,
			)
		}
		return mysql.Open(dsn), "mysql", nil
	case models.ClickHouse:
		dsn := config.DSN
		if dsn == "" {
			dsn = fmt.Sprintf(
				"clickhouse://%s:%s@%s:%d/%s",
				config.Username, config.Password, config.Host, config.Port, config.Database,
			)
		}
		return clickhouse.New(clickhouse.Config{
			DSN:                    dsn,
			DefaultTableEngineOpts: "ENGINE=MergeTree() ORDER BY id",
		}), "clickhouse", nil
	default:
		return nil, "", fmt.Errorf("unsupported database type: %q", config.Type)
	}
}

func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) Ping() error {
	if db.DB == nil {
		return fmt.Errorf("database not connected")
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (db *DB) DriverName() string {
	return db.driverName
}

func (db *DB) setConnectionPool() {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return
	}

	if db.config.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(db.config.MaxOpenConns)
	}
	if db.config.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(db.config.MaxIdleConns)
	}
	if db.config.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(db.config.ConnMaxLifetime) * time.Second)
	}
}

func sslMode(mode string) string {
	if mode == "" {
		return "disable"
	}
	return mode
}
