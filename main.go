package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"balance_debate/internal/api"
	"balance_debate/internal/middleware"
	"balance_debate/internal/repository"
	"balance_debate/internal/service"
	"balance_debate/internal/storage"
	"balance_debate/pkg/config"
)

func main() {
	// 載入應用程式配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化本地檔案存儲
	// 房間與聊天記錄都以 JSON 檔案保存在 data 目錄下
	store, err := storage.NewFileStore(cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize file store: %v", err)
	}

	// 初始化 repositories
	repos := repository.NewRepositories(store)

	// 初始化 services
	services := service.NewServices(repos, cfg)

	// 設置 Gin 路由
	r := gin.Default()
	r.Use(middleware.CORS())
	api.SetupRoutes(r, services)

	// 啟動伺服器
	if err := r.Run(cfg.Server.Address); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
