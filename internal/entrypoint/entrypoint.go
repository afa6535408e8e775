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

	"github.com/mrlokans/schooldesk/internal/config"
	http_controllers "github.com/mrlokans/schooldesk/internal/http"
	"github.com/mrlokans/schooldesk/internal/scheduler"
	"github.com/mrlokans/schooldesk/internal/tasks"
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

	// kill -9 cannot be caught, so only SIGINT and SIGTERM are handled.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener goes away.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting schooldesk v%s", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewApp(ctx, cfg, Connectors{})
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer app.Close()

	if err := app.Activate(ctx, ""); err != nil {
		log.Printf("WARNING: Failed to activate an account: %v", err)
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewRefreshDomainQueue(app.Refresher),
			tasks.NewImportCalendarsQueue(app.Refresher),
			tasks.NewCleanupRefreshEventsQueue(app.History),
		)
		go taskClient.Start(ctx)

		if _, err := taskClient.Enqueue(tasks.CleanupRefreshEventsTask{RetentionDays: cfg.Audit.RetentionDays}); err != nil {
			log.Printf("WARNING: Failed to enqueue refresh event cleanup: %v", err)
		}
	}

	// Stored overrides win over the configured schedule.
	refreshScheduler := scheduler.NewRefreshScheduler(app.Settings.Track(app.Refresher), app.Settings.GetRefreshConfig(ctx))
	if err := refreshScheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start refresh scheduler: %v", err)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:   app.Database,
		Accounts:   app.Accounts,
		Gate:       app.Gate,
		Stores:     app.Stores,
		Refresher:  app.Refresher,
		History:    app.History,
		Settings:   app.Settings,
		Scheduler:  refreshScheduler,
		TaskClient: taskClient,
		Version:    version,
	})

	onShutdown := func(shutdownCtx context.Context) {
		refreshScheduler.Stop()
		if taskClient != nil {
			taskClient.Stop(shutdownCtx)
		}
		cancel()
	}

	Serve(router, cfg, onShutdown)
}
