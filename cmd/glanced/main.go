package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/dasmlab/glance/pkg/clipwatch"
	"github.com/dasmlab/glance/pkg/config"
	"github.com/dasmlab/glance/pkg/langdetect"
	"github.com/dasmlab/glance/pkg/messages"
	"github.com/dasmlab/glance/pkg/server"
	"github.com/dasmlab/glance/pkg/settings"
	"github.com/dasmlab/glance/pkg/trigger"
	"github.com/sirupsen/logrus"
)

var (
	// Environment file, read before GLANCE_* variables are decoded
	envFile = flag.String("env", ".env", "Optional .env file with GLANCE_* variables")

	// Server configuration flags; when set they override the environment
	port     = flag.Int("port", 0, "HTTP bridge port (default from GLANCE_HTTP_PORT)")
	grpcPort = flag.Int("grpc-port", -1, "gRPC health port, 0 disables (default from GLANCE_GRPC_PORT)")

	// Session configuration
	settingsPath = flag.String("settings", "", "Path to the TOML translation settings file")
	locale       = flag.String("locale", "", "Locale of user-facing notices: en, fr, zh")
	useClipboard = flag.Bool("clipboard", false, "Translate clipboard changes instead of waiting for an editor")
	enabled      = flag.Bool("enabled", false, "Switch the translator on at start-up")

	// Logging configuration
	logLevel = flag.String("log-level", "", "Log level: debug, info, warn, error")
)

func main() {
	flag.Parse()

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	// Set log level
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("Invalid log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	initial, err := settings.LoadOrDefault(cfg.SettingsPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load translation settings")
	}

	logger.WithFields(logrus.Fields{
		"http_port":       cfg.HTTPPort,
		"grpc_port":       cfg.GRPCPort,
		"settings":        cfg.SettingsPath,
		"api":             initial.Provider,
		"target_language": initial.TargetLanguage,
		"locale":          cfg.Locale,
		"clipboard":       cfg.Clipboard,
		"log_level":       level.String(),
	}).Info("Starting glance daemon")

	newTranslator := trigger.DefaultTranslatorFactory(logger)
	checkTranslatorHealth(logger, newTranslator, initial)

	hub := server.NewHub(logger)
	host := server.NewHost(hub)

	session := trigger.NewSession(trigger.Config{
		Host:          host,
		Settings:      initial,
		NewTranslator: newTranslator,
		Detector:      langdetect.FromCodes(cfg.DetectLanguages),
		Messages:      messages.New(cfg.Locale, logger),
		DebounceDelay: cfg.DebounceDelay,
		Logger:        logger,
	})
	defer session.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.SettingsPath != "" {
		watcher := settings.NewWatcher(cfg.SettingsPath, session.OnConfigChanged, logger)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.WithError(err).Warn("Settings watcher stopped, edits will not be picked up")
			}
		}()
	}

	if cfg.Clipboard {
		if !clipwatch.Supported() {
			logger.Warn("No system clipboard available, clipboard mode disabled")
		} else {
			clip := clipwatch.New(session, cfg.ClipboardInterval, logger)
			host.Replacer = clip.Write
			go func() {
				if err := clip.Run(ctx); err != nil {
					logger.WithError(err).Warn("Clipboard watcher stopped")
				}
			}()
		}
	}

	if cfg.StartEnabled {
		session.Toggle()
	}

	errChan := make(chan error, 2)

	// Start HTTP bridge
	httpServer := server.NewHTTPServer(session, host, hub, logger, cfg.HTTPPort)
	go func() {
		if err := httpServer.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP bridge: %w", err)
		}
	}()

	// Start gRPC health server
	var grpcServer *grpc.Server
	var healthServer *health.Server
	if cfg.GRPCPort != 0 {
		grpcServer, healthServer = newGRPCServer(logger)
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"port": cfg.GRPCPort,
			}).Fatal("Failed to listen on port")
		}
		go func() {
			logger.WithFields(logrus.Fields{
				"port": cfg.GRPCPort,
			}).Info("gRPC health server listening")
			if err := grpcServer.Serve(lis); err != nil {
				errChan <- fmt.Errorf("failed to serve: %w", err)
			}
		}()
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		logger.WithError(err).Error("Server error, shutting down")
	case sig := <-sigChan:
		logger.WithFields(logrus.Fields{
			"signal": sig.String(),
		}).Info("Received signal, shutting down gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if healthServer != nil {
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	}
	cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP bridge shutdown incomplete")
	}

	if grpcServer != nil {
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			logger.Warn("Graceful shutdown timeout, forcing stop...")
			grpcServer.Stop()
		}
	}
	logger.Info("Server stopped gracefully")
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.HTTPPort = *port
		case "grpc-port":
			cfg.GRPCPort = *grpcPort
		case "settings":
			cfg.SettingsPath = *settingsPath
		case "locale":
			cfg.Locale = *locale
		case "clipboard":
			cfg.Clipboard = *useClipboard
		case "enabled":
			cfg.StartEnabled = *enabled
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
}

// checkTranslatorHealth builds a throwaway translator for the initial
// settings and reports whether the provider answers.
func checkTranslatorHealth(logger *logrus.Logger, newTranslator trigger.TranslatorFactory, s settings.Settings) {
	translator, err := newTranslator(s)
	if err != nil {
		logger.WithError(err).Warn("Translation settings are not usable yet")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("Checking translator health...")
	if err := translator.CheckHealth(ctx); err != nil {
		logger.WithError(err).Warn("Translator health check failed, but continuing anyway")
		logger.Warn("Selections may fail to translate until the provider is reachable")
		return
	}
	logger.Info("Translator health check passed")
}

// newGRPCServer creates the gRPC server carrying the health and reflection
// services.
func newGRPCServer(logger *logrus.Logger) (*grpc.Server, *health.Server) {
	opts := []grpc.ServerOption{
		grpc.Creds(insecure.NewCredentials()),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             15 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle: 5 * time.Minute,
			Time:              30 * time.Second,
			Timeout:           10 * time.Second,
		}),
	}
	logger.WithFields(logrus.Fields{
		"min_time":            "15s",
		"max_connection_idle": "5m",
	}).Debug("Configured gRPC server keepalive settings")

	s := grpc.NewServer(opts...)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	// Enable reflection for grpcurl/debugging
	reflection.Register(s)
	return s, healthServer
}
