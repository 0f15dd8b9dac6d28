// main.go

package main

import (
	"flag"
	"log"

	"github.com/jacl-coder/InkBrawl-Server/config"
	"github.com/jacl-coder/InkBrawl-Server/pkg/db"
)

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	action := flag.String("action", "help", "操作类型: reset, init, help")
	flag.Parse()

	// 显示帮助信息
	if *action == "help" {
		showHelp()
		return
	}

	// 加载配置
	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化数据库连接
	if err := db.InitPostgres(config.GlobalConfig.Database); err != nil {
		log.Fatalf("初始化PostgreSQL失败: %v", err)
	}
	defer db.Close()

	// 执行操作
	switch *action {
	case "reset":
		resetDatabase()
	case "init":
		initDatabase()
	default:
		log.Fatalf("未知操作: %s", *action)
	}
}

// showHelp 显示帮助信息
func showHelp() {
	log.Println("InkBrawl 数据库管理工具")
	log.Println("")
	log.Println("用法:")
	log.Println("  go run ./cmd/dbtool -action=<操作> [-config=<配置文件>]")
	log.Println("")
	log.Println("操作:")
	log.Println("  reset  - 删除对局记录表")
	log.Println("  init   - 创建对局记录表")
	log.Println("  help   - 显示此帮助信息")
}

// resetDatabase 重置数据库
func resetDatabase() {
	log.Println("⚠️  正在删除对局记录表...")

	if err := db.DropAllTables(); err != nil {
		log.Fatalf("重置数据库失败: %v", err)
	}

	log.Println("✅ 数据库重置完成")
}

// initDatabase 初始化数据库
func initDatabase() {
	log.Println("🚀 正在初始化数据库...")

	if err := db.InitAllTables(); err != nil {
		log.Fatalf("初始化数据库表失败: %v", err)
	}

	log.Println("✅ 数据库初始化完成")
	log.Println("  - match_results (对局结果表)")
	log.Println("  - match_participants (对局参与者表)")
}
