package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/database/books"
	"github.com/mrlokans/bookstore/internal/database/users"
	"github.com/mrlokans/bookstore/internal/uploads"
)

// RouterConfig carries every dependency the router wires together.
type RouterConfig struct {
	AuthService *auth.Service
	UsersRepo   *users.Repository
	BooksRepo   *books.Repository
	UploadStore *uploads.Store
	CORSOrigins []string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	RegisterValidators()

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.CORSOrigins))

	authController := NewAuthController(cfg.AuthService)
	usersController := NewUsersController(cfg.UsersRepo, cfg.AuthService)
	booksController := NewBooksController(cfg.BooksRepo)
	uploadController := NewUploadController(cfg.UploadStore)

	// Uploaded images are public read-only content.
	router.Static("/images", cfg.UploadStore.ImagesRoot())

	api := router.Group("/api/v1")

	// Public endpoints
	api.POST("/auth/login", authController.Login)
	api.POST("/user/register", usersController.Register)

	// Everything else requires a bearer token.
	protected := api.Group("", auth.Middleware(cfg.AuthService))
	protected.POST("/auth/logout", authController.Logout)
	protected.GET("/auth/account", authController.Account)

	protected.GET("/user", usersController.List)
	protected.GET("/book", booksController.List)
	protected.GET("/database/category", booksController.Categories)
	protected.POST("/file/upload", uploadController.Upload)

	// Mutations are restricted to administrators.
	admin := protected.Group("", auth.RequireAdmin())
	admin.POST("/user", usersController.Create)
	admin.PUT("/user", usersController.Update)
	admin.DELETE("/user/:id", usersController.Delete)
	admin.POST("/user/bulk-create", usersController.BulkCreate)

	admin.POST("/book", booksController.Create)
	admin.PUT("/book", booksController.Update)
	admin.DELETE("/book/:id", booksController.Delete)

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "upload-type")
	return cors.New(corsConfig)
}
