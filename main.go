// file: main.go
package main

import (
	"log"
	"os"

	"github.com/CCEE-SRM/ctf-dashboard-sub000/cache"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/controllers"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/database"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/routes"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/services"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	database.Connect()
	database.InitRedis()

	// 禁用自动迁移 (推荐)
	// database.MigrateTables()

	// 组装核心服务
	store := services.NewStore(database.DB)
	cacheStore := cache.NewRedisStore(database.RDB)
	notifier := services.NewRedisNotifier(database.RDB)

	configProvider := services.NewDBConfigProvider(database.DB)
	if err := configProvider.EnsureDefault(); err != nil {
		log.Fatalf("Failed to seed event config: %v", err)
	}

	scoringSvc := services.NewScoringService(store, configProvider, cacheStore, notifier)
	hintSvc := services.NewHintService(store, cacheStore, notifier)
	boardSvc := services.NewScoreboardService(store, cacheStore, notifier)

	controllers.Setup(scoringSvc, hintSvc, boardSvc, configProvider, cacheStore, notifier)

	r := routes.SetupRouter()

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	log.Println("Starting server on " + addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
