package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/archive"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/vpm/internal/infrastructure/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	port := flag.String("port", "", "Server port (overrides PORT)")
	root := flag.String("root", "", "Virtual environment root (overrides VPM_ROOT)")
	restore := flag.String("restore", "", "Backup id to restore into the root before starting")
	dev := flag.Bool("dev", false, "Development logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *root != "" {
		cfg.Storage.Root = *root
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *restore != "" {
		if err := restoreBackup(cfg, *restore, logger.Logger); err != nil {
			logger.Fatal("Failed to restore backup", zap.String("backup", *restore), zap.Error(err))
		}
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Received signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			logger.Error("Server error", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

// restoreBackup moves an existing root aside and unpacks the backup in its
// place.
func restoreBackup(cfg *config.Config, backupID string, logger *zap.Logger) error {
	if cfg.Storage.BackupDir == "" {
		return errors.New("VPM_BACKUP_DIR is not set")
	}
	root := filepath.Clean(cfg.Storage.Root)
	backups := filepath.Clean(cfg.Storage.BackupDir)

	if _, err := os.Stat(root); err == nil {
		aside := fmt.Sprintf("%s.%d.old", root, time.Now().Unix())
		if err := os.Rename(root, aside); err != nil {
			return err
		}
		logger.Info("Moved existing root aside", zap.String("path", aside))
		// backups kept inside the root moved with it
		if rel, err := filepath.Rel(root, backups); err == nil && filepath.IsLocal(rel) {
			backups = filepath.Join(aside, rel)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	a := archive.New(root, backups, logger)
	files, err := a.Extract(context.Background(), backupID, root)
	if err != nil {
		return err
	}
	logger.Info("Restored backup", zap.String("backup", backupID), zap.Int("files", files))
	return nil
}
