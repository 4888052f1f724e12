package main

import (
	"log"

	"panorama-service/internal/config"
	"panorama-service/internal/handlers"
	"panorama-service/internal/metrics"
	"panorama-service/internal/models"
	"panorama-service/internal/repository"
	"panorama-service/internal/scene"
	"panorama-service/internal/services"
	"panorama-service/internal/services/caches"
	"panorama-service/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func main() {
	cfg := InitConfig()
	db := ConnectDatabase(cfg)
	MigrateDatabase(db)
	rows := LoadSceneManifest(cfg)
	titles := LoadSceneTitles(cfg)

	m := metrics.NewMetrics()
	store := storage.NewInstrumentedStore(InitObjectStore(cfg), m)
	fileCache := caches.NewMemoryCache(cfg.CacheMaxItems, cfg.CacheTTL)

	renderedRepo := repository.NewRenderedImageRepository(db)
	panoramaRepo := repository.NewPanoramaRepository(db)
	fileService := services.NewFileService(renderedRepo, store, fileCache, cfg.CacheMaxPayload)
	panoramaService := services.NewPanoramaService(panoramaRepo)
	ingestService := services.NewIngestService(renderedRepo, store)

	app := fiber.New(fiber.Config{
		StreamRequestBody: true,
	})

	// Register Prometheus metrics endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	fileHandler := handlers.NewFileHandler(fileService, m, cfg.RequestTimeout)
	panoramaHandler := handlers.NewPanoramaHandler(panoramaService)
	sceneHandler := handlers.NewSceneHandler(rows, titles, m)
	ingestHandler := handlers.NewIngestHandler(ingestService)
	cacheHandler := handlers.NewCacheHandler(fileCache, fileService, m, cfg.RequestTimeout)

	api := app.Group("/api/panorama")
	api.Get("/file", fileHandler.GetFile)
	api.Get("/panoramas", panoramaHandler.ListPanoramas)
	api.Get("/scenes", sceneHandler.GetManifest)
	api.Get("/scenes/match", sceneHandler.MatchScene)
	api.Post("/rendered-images", ingestHandler.UploadRenderedImages)

	api.Get("/cache/stats", cacheHandler.GetCacheStats)
	api.Post("/cache/warm", cacheHandler.WarmCache)
	api.Post("/cache/clear", cacheHandler.ClearCache)
	api.Delete("/cache/entry", cacheHandler.InvalidateEntry)

	api.Get("/swagger/*", swagger.HandlerDefault)

	// Add Health check endpoint
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	routes := app.GetRoutes()
	log.Println("Registered routes:")
	for _, r := range routes {
		log.Printf("  %s %s\n", r.Method, r.Path)
	}

	// Start the Fiber server
	port := cfg.AppPort
	if port == "" {
		port = "8080"
		log.Printf("Defaulting to port %s", port)
	}
	log.Printf("Server listening on port %s", port)
	log.Fatal(app.Listen(":" + port))
}

func InitConfig() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	return cfg
}

func ConnectDatabase(cfg *config.Config) *gorm.DB {
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	return db
}

func MigrateDatabase(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.Category{},
		&models.FurnitureModel{},
		&models.Material{},
		&models.Color{},
		&models.Panorama{},
		&models.Asset{},
		&models.RenderedImage{},
	)
	if err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
}

func InitObjectStore(cfg *config.Config) storage.ObjectStore {
	store, err := storage.NewMinioStore(cfg)
	if err != nil {
		log.Fatalf("MinIO client initialization failed: %v", err)
	}
	return store
}

func LoadSceneManifest(cfg *config.Config) []scene.Row {
	if cfg.SceneManifestPath == "" {
		log.Printf("No scene manifest configured, scene matching disabled")
		return nil
	}
	rows, err := scene.LoadManifest(cfg.SceneManifestPath)
	if err != nil {
		log.Fatalf("Scene manifest load failed: %v", err)
	}
	log.Printf("Loaded %d scene rows from %s", len(rows), cfg.SceneManifestPath)
	return rows
}

func LoadSceneTitles(cfg *config.Config) []scene.Title {
	if cfg.SceneTitlesPath == "" {
		return nil
	}
	titles, err := scene.LoadTitles(cfg.SceneTitlesPath)
	if err != nil {
		log.Fatalf("Scene titles load failed: %v", err)
	}
	log.Printf("Loaded %d legacy scene titles from %s", len(titles), cfg.SceneTitlesPath)
	return titles
}
