package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"docvault/internal/config"
	"docvault/internal/database"
	"docvault/internal/middleware"
	"docvault/internal/modules/auth"
	"docvault/internal/modules/document"
	jwtsvc "docvault/internal/pkg/jwt"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	blobs, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	authService := auth.NewService(userRepo, departmentRepo, j)
	authHandler := auth.NewHandler(authService)

	policy := document.NewDepartmentPermissionPolicy(userRepo, permissionRepo)
	documentService := document.NewService(documentRepo, userRepo, blobs)
	documentHandler := document.NewHandler(documentService, policy, cfg.MaxUploadSize)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.RequestLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		documentHandler.RegisterPublicRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.RequireAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			documentHandler.RegisterProtectedRoutes(protected)
		}
	}

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
