package main

import (
	"context"
	"log"

	"NovaCTF/config"
	"NovaCTF/database"
	"NovaCTF/routes"
	"NovaCTF/services"
)

func main() {
	config.Load()

	database.Connect()
	database.InitRedis()

	// 禁用自动迁移 (推荐)，表结构由运维脚本管理
	// database.MigrateTables()

	if config.C.DockerEnabled {
		services.InitDocker()
	}

	// Tick 引擎随进程启动，扫描所有已开放的 AD/KotH 题目
	services.StartTickScheduler(context.Background())

	r := routes.SetupRouter()

	log.Println("Starting server on :" + config.C.Port)
	if err := r.Run(":" + config.C.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
