package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/shipfastordie/shipboard/internal/handlers"
	"github.com/shipfastordie/shipboard/internal/repositories"
	"github.com/shipfastordie/shipboard/internal/services"
	"github.com/shipfastordie/shipboard/pkg/config"
	"github.com/shipfastordie/shipboard/pkg/database"
	"github.com/shipfastordie/shipboard/pkg/logger"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init()
	gin.SetMode(config.AppConfig.Server.Mode)

	// Initialize database
	db, err := database.Open(config.AppConfig.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize dependencies
	userRepo := repositories.NewUserRepository(db)
	productRepo := repositories.NewProductRepository(db)
	userService := services.NewUserService(userRepo)
	githubService := services.NewGitHubService()
	githubRepoService := services.NewGitHubRepositoryService()
	productService := services.NewProductService(productRepo, userService, githubRepoService)

	// Initialize router
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     config.AppConfig.WebApp.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	setupRoutes(router, userService, githubService, githubRepoService, productService)

	// Setup server
	server := &http.Server{
		Addr:         ":" + config.AppConfig.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(config.AppConfig.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.AppConfig.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Infof("Server starting on :%s", config.AppConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
}

func setupRoutes(
	router *gin.Engine,
	userService *services.UserService,
	githubService *services.GitHubService,
	githubRepoService *services.GitHubRepositoryService,
	productService *services.ProductService,
) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, githubService)
	userHandler := handlers.NewUserHandler(userService, githubRepoService)
	productHandler := handlers.NewProductHandler(productService)
	healthHandler := handlers.NewHealthHandler()

	// Auth routes
	router.GET("/auth/github/login", authHandler.GitHubLogin)
	router.GET("/auth/github/callback", authHandler.GitHubCallback)

	// User routes
	users := router.Group("/users")
	{
		users.GET("/:username", userHandler.GetUser)
		users.GET("/:username/repos", userHandler.ListRepositories)
		users.POST("/:username/products", productHandler.AddProduct)
		users.GET("/:username/products", productHandler.ListProducts)
		users.GET("/:username/products/:repo_name", productHandler.GetProduct)
		users.DELETE("/:username/products/:repo_name", productHandler.RemoveProduct)
	}

	// Leaderboard
	router.GET("/products/leaderboard", productHandler.Leaderboard)
	router.GET("/products/leaderboard/export", productHandler.ExportLeaderboard)

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)
}
