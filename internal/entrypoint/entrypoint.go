package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	"github.com/mrlokans/bookstore/internal/database/books"
	"github.com/mrlokans/bookstore/internal/database/users"
	http_controllers "github.com/mrlokans/bookstore/internal/http"
	"github.com/mrlokans/bookstore/internal/scheduler"
	"github.com/mrlokans/bookstore/internal/uploads"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM. SIGKILL cannot be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Shutdown callback first, e.g. to stop the sweep scheduler.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookstore v%s", version)

	if cfg.Auth.JWTSecret == "" {
		log.Printf("WARNING: JWT_SECRET is not set. Tokens will not survive restarts; set it in production.")
		cfg.Auth.JWTSecret = auth.GenerateSecret()
	}

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	usersRepo := users.NewRepository(db.DB)
	booksRepo := books.NewRepository(db.DB)

	authService := auth.NewService(usersRepo, cfg.Auth)

	uploadStore, err := uploads.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxSizeMB)
	if err != nil {
		log.Fatalf("Failed to initialize upload store: %v", err)
	}
	log.Printf("Upload store initialized at %s", cfg.Uploads.Dir)

	// Periodic cleanup of uploaded images no book references anymore.
	sweeper := scheduler.NewSweepScheduler(uploadStore, map[string]scheduler.ImageReferencer{
		"book": booksRepo,
	})
	if err := sweeper.Start(cfg.Uploads.SweepSchedule); err != nil {
		log.Fatalf("Failed to start image sweep scheduler: %v", err)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		AuthService: authService,
		UsersRepo:   usersRepo,
		BooksRepo:   booksRepo,
		UploadStore: uploadStore,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})

	onShutdown := func(ctx context.Context) {
		sweeper.Stop()
	}

	Serve(router, cfg, onShutdown)
}
