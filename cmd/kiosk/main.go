package main

import (
	"fmt"
	"log"
	"os"

	"comedores/internal/cart"
	"comedores/internal/checkout"
	"comedores/internal/comedorapi"
	"comedores/internal/storage"
	"comedores/internal/stream"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type config struct {
	apiURL   string
	email    string
	stateDir string
}

// NewLogger creates a zap console logger with colored levels.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stderr), zapcore.WarnLevel)

	return zap.New(core).Sugar(), nil
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cfg := config{
		apiURL:   envOr("COMEDORES_API_URL", "http://localhost:8081"),
		email:    envOr("COMEDORES_EMAIL", ""),
		stateDir: envOr("COMEDORES_STATE_DIR", ".comedores"),
	}
	if cfg.email == "" {
		log.Fatal("COMEDORES_EMAIL must be set")
	}

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	local, err := storage.NewFileStore(cfg.stateDir)
	if err != nil {
		logger.Fatal(err)
	}

	store := cart.NewStore()
	if err := cart.Load(local, store); err != nil {
		logger.Warnw("could not restore saved cart", "error", err)
	}

	client := comedorapi.NewClient(cfg.apiURL, cfg.email, logger)
	coordinator := checkout.NewCoordinator(store, client, logger)

	channel := stream.NewChannel(stream.NewSSETransport(cfg.apiURL), logger)
	defer channel.Close()

	k := &kiosk{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		local:       local,
		client:      client,
		coordinator: coordinator,
		channel:     channel,
	}
	k.runLoop()
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
