// main.go

package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/jacl-coder/InkBrawl-Server/config"
	"github.com/jacl-coder/InkBrawl-Server/internal/auth"
	"github.com/jacl-coder/InkBrawl-Server/internal/game"
	"github.com/jacl-coder/InkBrawl-Server/internal/store"
	"github.com/jacl-coder/InkBrawl-Server/pkg/db"
	"github.com/jacl-coder/InkBrawl-Server/pkg/logger"
)

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	if err := config.LoadConfig(*configPath); err != nil {
		logger.Log.Fatalf("加载配置失败: %v", err)
	}
	cfg := &config.GlobalConfig
	logger.Init(cfg.Server.LogLevel, cfg.Server.LogFormat)

	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	var (
		recorders store.MultiRecorder
		results   game.ResultLister
	)

	// 初始化数据库连接
	if cfg.Database.Enabled {
		if err := db.InitPostgres(cfg.Database); err != nil {
			logger.Log.Fatalf("初始化PostgreSQL失败: %v", err)
		}
		defer db.Close()
		recorders = append(recorders, store.NewPostgresRecorder(db.DB))
	}

	// 初始化Redis连接
	if cfg.Redis.Enabled {
		if err := db.InitRedis(cfg.Redis); err != nil {
			logger.Log.Fatalf("初始化Redis失败: %v", err)
		}
		defer db.CloseRedis()
		recent := store.NewRedisRecorder(db.RedisClient, cfg.Redis.RecentResults)
		recorders = append(recorders, recent)
		results = recent
	}

	if len(recorders) == 0 {
		logger.Log.Info("未启用持久化，对局结果不会被记录")
	}

	server := game.NewGameServer(game.ServerOptions{
		Config:   cfg,
		Auth:     auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
		Recorder: recorders,
		Results:  results,
	})

	// 启动服务器
	if err := server.Start(); err != nil {
		logger.Log.Fatalf("启动游戏服务器失败: %v", err)
	}

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Log.Info("接收到关闭信号，正在关闭服务器...")
	if err := server.Stop(); err != nil {
		logger.Log.WithError(err).Error("关闭服务器失败")
	}
	logger.Log.Info("服务器已安全关闭")
}
