package main

import (
	"ecoscope/database"
	"ecoscope/internal/cache"
	"ecoscope/internal/controllers"
	"ecoscope/internal/envdata"
	"ecoscope/internal/explain"
	"ecoscope/internal/features"
	"ecoscope/internal/mq"
	"ecoscope/internal/narrative"
	"ecoscope/internal/registry"
	"ecoscope/internal/repository"
	"ecoscope/internal/services"
	"ecoscope/routes"
	"log"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load("../.env"); err != nil {
		log.Println("No .env file found, using environment")
	}

	// Connect to database
	database.ConnectDatabase()
	if err := database.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize repositories
	predictionRepo := repository.NewPredictionRepository(database.DB)
	analysisRepo := repository.NewAnalysisRepository(database.DB)

	// Region registry and environmental data source
	modelDir := os.Getenv("MODEL_DIR")
	if modelDir == "" {
		modelDir = "./models"
	}
	regionRegistry := registry.New(registry.DefaultProfiles(modelDir)...)

	dataBaseURL := os.Getenv("ENV_DATA_URL")
	if dataBaseURL == "" {
		dataBaseURL = "http://localhost:9000"
	}
	source := envdata.NewHTTPSource(dataBaseURL, os.Getenv("ENV_DATA_API_KEY"), 10*time.Second)
	engineer := features.NewEngineer(source, 15*time.Second)

	predictor := services.NewPredictor(regionRegistry, engineer)

	// Narrative generator; the template fallback covers a missing API key
	var storyClient narrative.StoryClient
	if client, err := narrative.NewClient(); err != nil {
		log.Printf("Warning: narrative client unavailable, using template stories: %v", err)
	} else {
		storyClient = client
	}
	generator := narrative.NewGenerator(storyClient, 30*time.Second)

	pipeline := services.NewExplainPipeline(predictor, explain.NewEngine(0.01), generator)

	// Optional Redis hot cache for completed analyses
	var redisClient *cache.RedisClient
	if os.Getenv("REDIS_URL") != "" {
		rc, err := cache.NewRedisClient()
		if err != nil {
			log.Printf("Warning: Redis unavailable, analysis cache is database-only: %v", err)
		} else {
			redisClient = rc
			defer redisClient.Close()
		}
	}

	// Optional RabbitMQ publisher for analysis lifecycle events
	var publisher *mq.Publisher
	if rabbitURL := os.Getenv("RABBITMQ_URL"); rabbitURL != "" {
		p, err := mq.NewPublisher(rabbitURL, "ecoscope.analysis.events")
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, analysis events disabled: %v", err)
		} else {
			publisher = p
			defer publisher.Close()
		}
	}

	// Initialize analysis worker pool
	workerCount := runtime.NumCPU()
	if workerCount < 3 {
		workerCount = 3
	}

	analysisWorker := services.NewAnalysisWorker(analysisRepo, pipeline, redisClient, publisher, workerCount)

	log.Printf("Starting analysis worker with %d workers...", workerCount)
	analysisWorker.Start()
	defer analysisWorker.Stop()

	// Initialize controllers
	predictionController := controllers.NewPredictionController(predictor, analysisWorker, predictionRepo, source)
	analysisController := controllers.NewAnalysisController(analysisWorker)

	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message":  "Ecoscope API is running",
			"version":  "1.0.0",
			"status":   "healthy",
			"database": "PostgreSQL",
			"analysis": "Async explanation jobs via worker pool",
		})
	})

	routes.RegisterPredictionRoutes(router, predictionController)
	routes.RegisterAnalysisRoutes(router, analysisController)

	// Debug endpoints
	router.GET("/debug/stats", func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		c.JSON(200, gin.H{
			"goroutines": runtime.NumGoroutine(),
			"memory_mb":  m.Alloc / 1024 / 1024,
			"workers":    workerCount,
		})
	})

	router.GET("/debug/database", func(c *gin.Context) {
		sqlDB, err := database.DB.DB()
		if err != nil {
			c.JSON(500, gin.H{
				"database_health": false,
				"error":           err.Error(),
			})
			return
		}

		var result int
		row := sqlDB.QueryRowContext(c.Request.Context(), "SELECT 1")
		err = row.Scan(&result)
		isHealthy := err == nil && result == 1

		c.JSON(200, gin.H{
			"database_health": isHealthy,
		})
	})

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	log.Printf("Health Check: http://localhost:%s/prediction/health", port)

	server := &http.Server{
		Addr:           ":" + port,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	if err := server.ListenAndServe(); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
