package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"comedores/internal/promo"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "0.3.0"

// NewLogger creates a zap console logger with colored levels.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel)

	return zap.New(core).Sugar(), nil
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cfg := config{
		addr:        envOr("DEVSERVER_ADDR", ":8081"),
		env:         envOr("ENV", "development"),
		orderSecret: envOr("ORDER_NUMBER_SECRET", "comedores-dev"),
		statusStep:  envDurationOr("STATUS_STEP", 10*time.Second),
	}

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	app := &application{
		config:   cfg,
		logger:   logger,
		menu:     seedMenu(),
		catalog:  seedCatalog(),
		hub:      newHub(logger),
		ordNum:   newOrderNumberGenerator(cfg.orderSecret),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	mux := app.mount()

	logger.Fatal(app.run(mux))
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		fmt.Println("Invalid", key, "- defaulting to", fallback)
		return fallback
	}
	return d
}

// seedCatalog is the promotion catalog the dev backend serves. Mirrors the
// kinds the pricing engine understands so the client can be exercised end to
// end against all four variants.
func seedCatalog() []promo.Promotion {
	return []promo.Promotion{
		{
			ID: 1, Name: "Compra 2 sandwiches, bebida gratis", Kind: promo.BuyXGetY,
			RequiredCategory: "SANDWICH", FreeCategory: "BEBIDA",
			RequiredQuantity: 2, FreeQuantityGranted: 1,
		},
		{
			ID: 2, Name: "3x2 en postres", Kind: promo.BuyXPayY,
			RequiredQuantity: 3, ChargedQuantity: 2,
		},
		{
			ID: 3, Name: "10% sobre 50", Kind: promo.PercentageDiscount,
			Percentage: 10, MinimumPurchaseCents: 5000,
		},
		{
			ID: 4, Name: "5 de descuento sobre 30", Kind: promo.FixedDiscount,
			AmountCents: 500, MinimumPurchaseCents: 3000,
		},
	}
}
