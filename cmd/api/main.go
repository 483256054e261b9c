// Package main provides the entry point for the StayBook server application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/staybook/staybook-server/internal/di"
	"github.com/staybook/staybook-server/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services and start listening
	if err := di.Bootstrap(injector, true); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		_ = injector.Shutdown()
		os.Exit(1)
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// The container shuts services down in reverse dependency order: the
	// HTTP server drains first, the store and search index close last.
	report := injector.Shutdown()
	if report != nil && len(report.Errors) > 0 {
		log.Error("Shutdown error", "error", report.Error())
		os.Exit(1)
	}

	log.Info("Goodbye")
}
