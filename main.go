package main

import (
	"log"
	"net/http"

	"github.com/shopspring/decimal"

	"foodiego/config"
	httpapi "foodiego/internal/api/http"
	"foodiego/internal/service"
	"foodiego/internal/storage"
)

func main() {
	// The frontend expects money as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	settings := config.Load()

	db := config.MustInitPostgres()
	defer db.Close()

	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	var cache service.MenuCache
	if settings.RedisEnabled {
		cache = storage.NewRedisMenuCache(config.MustInitRedis(), settings.MenuCacheTTL)
	}

	var publisher service.EventPublisher
	if settings.KafkaEnabled {
		writer := config.NewKafkaWriter(settings.OrderTopic)
		defer writer.Close()
		publisher = storage.NewKafkaPublisher(writer)
	}

	files, err := storage.NewFileStore(settings.UploadDir)
	if err != nil {
		log.Fatal("Failed to init file storage:", err)
	}

	authSvc := service.NewAuthService(repo, repo, settings.JWTSecret, settings.JWTTTL)
	restaurantSvc := service.NewRestaurantService(repo, repo)
	menuSvc := service.NewMenuService(repo, repo, cache)
	orderSvc := service.NewOrderService(repo, repo, repo, publisher,
		service.DefaultQRGenerator{BaseURL: settings.TrackingURL})

	handler := httpapi.NewHandler(authSvc, restaurantSvc, menuSvc, orderSvc, files)
	router := httpapi.NewRouter(handler, settings.UploadDir, settings.AllowedOrigins)

	log.Printf("[foodiego] backend starting on %s", settings.HTTPAddr)
	log.Fatal(http.ListenAndServe(settings.HTTPAddr, router))
}
