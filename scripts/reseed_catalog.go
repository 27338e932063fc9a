// 手动重建课程/职业/生活成本目录脚本
//
// 目录数据随应用版本内置，正常启动时只在表为空时灌入。
// 发布了新的课程内容后用本脚本强制清空并重灌。
//
// 用法: go run scripts/reseed_catalog.go
package main

import (
	"finlit_backend/internal/config"
	"finlit_backend/pkg/database"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	if err := database.ReseedCatalog(db); err != nil {
		log.Fatalf("目录重建失败: %v", err)
	}

	log.Println("课程目录重建完成")
}
