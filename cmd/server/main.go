package main

import (
	"errors"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"todopro/internal/config"
	"todopro/internal/handler"
	"todopro/internal/middleware"
	"todopro/internal/model"
	"todopro/internal/repository"
	"todopro/internal/service"
	"todopro/migrations"
	"todopro/pkg/database"
	"todopro/pkg/logger"
	"todopro/pkg/password"
	"todopro/pkg/token"
)

func main() {
	log := logger.Default()

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	if err := migrate(db); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	if cfg.AppEnv == "development" {
		if err := seedDev(db); err != nil {
			log.Error("failed to seed development data", "error", err)
			os.Exit(1)
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb = redis.NewClient(opts)
	}

	issuer := token.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL())

	userRepo := repository.NewUserRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	groupRepo := repository.NewGroupRepository(db)

	authService := service.NewAuthService(userRepo, departmentRepo, issuer)
	departmentService := service.NewDepartmentService(departmentRepo, userRepo)
	todoService := service.NewTodoService(todoRepo, userRepo)
	groupService := service.NewGroupService(groupRepo, rdb, cfg.RateLimitMessage)

	userHandler := handler.NewUserHandler(authService)
	departmentHandler := handler.NewDepartmentHandler(departmentService)
	todoHandler := handler.NewTodoHandler(todoService)
	groupHandler := handler.NewGroupHandler(groupService)

	streamHandler := handler.NewStreamHandler(groupService)
	groupService.SetBroadcaster(streamHandler)

	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigins},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	authMiddleware := middleware.NewAuthMiddleware(issuer)

	api := router.Group("/api")
	{
		// Public routes
		api.GET("/departments", departmentHandler.List)
		api.POST("/users/register", userHandler.Register)
		api.POST("/users/login", userHandler.Login)
	}

	// Protected routes
	authed := router.Group("/api")
	authed.Use(authMiddleware.RequireAuth())
	{
		authed.POST("/departments", departmentHandler.Create)
		authed.PUT("/departments/:id", departmentHandler.Rename)
		authed.DELETE("/departments/:id", departmentHandler.Delete)
		authed.GET("/departments/:id/users", departmentHandler.Users)

		authed.GET("/users", userHandler.ListUsers)
		authed.GET("/users/me", userHandler.Me)
		authed.PUT("/users/profile", userHandler.UpdateProfile)
		authed.PUT("/users/password", userHandler.ChangePassword)

		authed.GET("/todos", todoHandler.List)
		authed.GET("/todos/:id", todoHandler.Detail)
		authed.POST("/todos", todoHandler.Create)
		authed.PUT("/todos/:id/complete", todoHandler.SetCompletion)
		authed.POST("/todos/:id/comments", todoHandler.AddComment)
		authed.DELETE("/todos/:id", todoHandler.Delete)

		authed.GET("/groups", groupHandler.MyGroups)
		authed.GET("/groups/:groupId/messages", groupHandler.ListMessages)
		authed.POST("/groups/:groupId/messages", groupHandler.PostMessage)
		authed.POST("/groups/:groupId/read", groupHandler.MarkRead)
		authed.GET("/groups/:groupId/ws", streamHandler.Subscribe)
	}

	log.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// migrate applies the ordered SQL migrations on postgres; the sqlite dev path
// derives the same schema from the models.
func migrate(db *gorm.DB) error {
	if database.IsPostgres(db) {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		goose.SetBaseFS(migrations.FS)
		if err := goose.SetDialect("postgres"); err != nil {
			return err
		}
		return goose.Up(sqlDB, ".")
	}
	return db.AutoMigrate(model.AllModels()...)
}

// seedDev makes sure a supervisor account and a department exist so the API
// is usable right after a fresh start.
func seedDev(db *gorm.DB) error {
	var department model.Department
	err := db.Where("name = ?", "General").First(&department).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		department = model.Department{Name: "General"}
		err = db.Create(&department).Error
	}
	if err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.User{}).Where("account = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := password.Hash("admin123")
	if err != nil {
		return err
	}

	admin := model.User{
		Account:      "admin",
		PasswordHash: hash,
		Name:         "Administrator",
		Supervisor:   true,
		DepartmentID: &department.ID,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Default().Info("seeded development supervisor", "account", "admin")
	return nil
}
