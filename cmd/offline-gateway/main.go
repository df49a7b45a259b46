package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	// Initialize composition root with all dependencies
	root, err := NewCompositionRoot()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	// Ensure cleanup on exit
	defer func() {
		if err := root.Cleanup(); err != nil {
			root.Logger.Error("Failed to cleanup resources", zap.Error(err))
		}
	}()

	// Install: seed the static namespace. All-or-nothing; a failed seed
	// aborts startup so the next start retries it.
	installCtx, cancelInstall := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := root.Router.Install(installCtx); err != nil {
		cancelInstall()
		root.Logger.Error("Install failed", zap.Error(err))
		os.Exit(1)
	}
	cancelInstall()

	// Activate: purge namespaces left over from previous cache versions,
	// then start serving immediately.
	if err := root.Router.Activate(context.Background()); err != nil {
		root.Logger.Error("Activation failed", zap.Error(err))
		os.Exit(1)
	}

	root.Logger.Info("Starting offline gateway", zap.String("addr", root.Config.ListenAddr))
	go func() {
		if err := root.HTTPServer.Start(root.Config.ListenAddr); err != nil {
			root.Logger.Error("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	root.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := root.HTTPServer.Stop(ctx); err != nil {
		root.Logger.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	root.Logger.Info("Server exited")
}
