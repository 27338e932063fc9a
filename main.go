// @title FinLit 后端 API
// @version 1.0
// @description 青少年财商教育平台的后端服务器：课程、测验、经验等级、社区动态与职业信息。
// @termsOfService http://swagger.io/terms/

// @contact.name API支持
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"finlit_backend/internal/app"
	"finlit_backend/internal/config"
	"finlit_backend/pkg/configwatcher"
	"finlit_backend/pkg/logger"
	"flag"
	"log"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 配置热加载
	go configwatcher.WatchConfig("configs/config.yaml", application.ApplyConfig)

	application.Run()
}
