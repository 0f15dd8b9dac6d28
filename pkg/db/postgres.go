package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/jacl-coder/InkBrawl-Server/config"
	"github.com/jacl-coder/InkBrawl-Server/pkg/logger"
)

// DB 对局记录库连接，未启用数据库时为 nil
var DB *sql.DB

// InitPostgres 打开对局记录库并校验连通性
func InitPostgres(cfg config.DatabaseConfig) error {
	conn, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return fmt.Errorf("打开对局记录库失败: %w", err)
	}
	applyPool(conn, cfg)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("对局记录库 %s:%d 不可达: %w", cfg.Host, cfg.Port, err)
	}

	DB = conn
	logger.Log.WithFields(logrus.Fields{
		"host":      cfg.Host,
		"dbname":    cfg.DBName,
		"max_open":  cfg.MaxOpenConns,
		"max_idle":  cfg.MaxIdleConns,
		"life_time": cfg.ConnMaxLifetime,
	}).Info("对局记录库已就绪")
	return nil
}

// applyPool 0 表示沿用 database/sql 的默认值
func applyPool(conn *sql.DB, cfg config.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}

// Close 关闭对局记录库
func Close() {
	if DB == nil {
		return
	}
	if err := DB.Close(); err != nil {
		logger.Log.WithError(err).Warn("关闭对局记录库出错")
	}
	DB = nil
}
