package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log 全局日志实例，未调用 Init 时使用 logrus 默认配置
var Log = logrus.New()

// Init 初始化全局日志
// level、format 为空时读取环境变量 LOG_LEVEL、LOG_FORMAT
func Init(level, format string) {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if format == "" {
		format = os.Getenv("LOG_FORMAT")
	}
	if strings.ToLower(format) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	Log.SetOutput(os.Stdout)
}

// Room 带房间字段的日志
func Room(code string) *logrus.Entry {
	return Log.WithField("room", code)
}
