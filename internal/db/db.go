package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmsdash/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSQLitePath = "database.sqlite"

// Open 根据配置建立数据库连接。调用方负责在退出时调用 Close。
func Open(cfg config.DatabaseConfig, log gormlogger.Interface) (*gorm.DB, error) {
	if log == nil {
		log = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	dsn := strings.TrimSpace(cfg.DSN)

	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite", "sqlite3":
		driver = "sqlite"
		if dsn == "" {
			dsn = defaultSQLitePath
		}
		if err := ensureParentDir(dsn); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(dsn)
	case "postgres", "postgresql":
		if dsn == "" {
			return nil, errors.New("postgres dsn is required")
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	// TranslateError 让唯一约束冲突统一表现为 gorm.ErrDuplicatedKey
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         log,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		// SQLite 同一时间只允许一个写入者，单连接可避免 database is locked
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return gdb, nil
}

// Migrate 创建或升级 posts 与 pages 表，可重复执行。
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&Post{}, &Page{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return backfillPageTimestamps(gdb, time.Now())
}

// backfillPageTimestamps 为旧版 pages 表（没有时间戳列）迁移过来的记录补齐时间。
func backfillPageTimestamps(gdb *gorm.DB, now time.Time) error {
	if err := gdb.Model(&Page{}).
		Where("created_at IS NULL").
		UpdateColumn("created_at", now).Error; err != nil {
		return fmt.Errorf("backfill pages.created_at: %w", err)
	}
	if err := gdb.Model(&Page{}).
		Where("updated_at IS NULL").
		UpdateColumn("updated_at", gorm.Expr("created_at")).Error; err != nil {
		return fmt.Errorf("backfill pages.updated_at: %w", err)
	}
	return nil
}

// Ping checks that the underlying connection pool is reachable.
func Ping(ctx context.Context, gdb *gorm.DB) error {
	if gdb == nil {
		return errors.New("database not initialized")
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func Close(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func ensureParentDir(dsn string) error {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	path := dsn
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}

	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
