package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rahmatagung/user-management/internal/cleanup"
	cleanupPostgres "github.com/rahmatagung/user-management/internal/cleanup/postgres"
	"github.com/rahmatagung/user-management/pkg/logger"
)

var cleanupOnce bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Run retention cleanup jobs",
	Long: `Run the retention jobs that purge expired audit logs, trim password
history, and deactivate dormant accounts. By default the scheduler keeps
running on the configured intervals; --once runs every job a single time
and exits.`,
	Run: func(cmd *cobra.Command, args []string) {
		runCleanup()
	},
}

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupOnce, "once", false, "Run all jobs once and exit")
}

func runCleanup() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	appLogger := logger.LoggerWrapper()

	sqlxDB, err := initDB(cfg.Database)
	if err != nil {
		appLogger.Error("failed to init db", "error", err)
		os.Exit(1)
	}
	defer sqlxDB.Close()

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
	if err != nil {
		appLogger.Error("failed to init gorm", "error", err)
		os.Exit(1)
	}

	repo := cleanupPostgres.NewCleanupRepository(gormDB)
	service := cleanup.NewService(repo, cfg.Cleanup, appLogger)

	if cleanupOnce {
		results := service.RunAll(context.Background())
		out, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(out))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	scheduler := cleanup.NewScheduler(service, cfg.Cleanup, appLogger)
	scheduler.Start(ctx)

	appLogger.Info("cleanup scheduler is running. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	appLogger.Info("received signal, shutting down cleanup scheduler", "signal", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	shutdownDone := make(chan struct{})
	go func() {
		scheduler.Wait()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		appLogger.Info("cleanup scheduler shutdown complete")
	case <-shutdownCtx.Done():
		appLogger.Warn("shutdown timeout reached, forcing exit")
	}
}
