package db

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/jacl-coder/InkBrawl-Server/config"
	"github.com/jacl-coder/InkBrawl-Server/pkg/logger"
)

// RedisClient 最近对局缓存，未启用 Redis 时为 nil
var RedisClient *redis.Client

// redisOptions 配置项为 0 时由 go-redis 使用自身默认值
func redisOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// InitRedis 连接最近对局缓存
func InitRedis(cfg config.RedisConfig) error {
	opts := redisOptions(cfg)
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("最近对局缓存 %s 不可达: %w", opts.Addr, err)
	}

	RedisClient = client
	logger.Log.WithFields(logrus.Fields{
		"addr":      opts.Addr,
		"db":        opts.DB,
		"pool_size": opts.PoolSize,
		"keep":      cfg.RecentResults,
	}).Info("最近对局缓存已就绪")
	return nil
}

// CloseRedis 关闭最近对局缓存
func CloseRedis() {
	if RedisClient == nil {
		return
	}
	if err := RedisClient.Close(); err != nil {
		logger.Log.WithError(err).Warn("关闭最近对局缓存出错")
	}
	RedisClient = nil
}
