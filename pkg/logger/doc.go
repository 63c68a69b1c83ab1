// Package logger provides a structured logging interface for the crawler.
//
// It wraps the zerolog library to provide a clean API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors
// - Optional file output
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "igcrawler/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File: "/var/log/igcrawler.log",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	log := logger.GetLogger()
//	log.Info("Crawler started")
//	log.WithField("account", "natgeo").Info("Sweep scheduled")
//	log.WithError(err).Error("Failed to persist post")
package logger
