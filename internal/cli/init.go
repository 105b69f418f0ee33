// Package cli holds the start-up steps shared by cmd/ledger and
// cmd/ledger-worker.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"pocketledger/internal/amqp"
	"pocketledger/internal/config"
	"pocketledger/internal/export"
	"pocketledger/internal/ledger"
	applog "pocketledger/internal/log"
	"pocketledger/internal/services"
	"pocketledger/internal/storage"
)

// Export targets accepted by NewExporter.
const (
	ExportCSV    = "csv"
	ExportSheets = "sheets"
)

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the component logger from cfg and makes it the default.
func SetupLogger(cfg *config.Config, component string, out io.Writer) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: component,
		Output:    out,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig reads the environment and validates the result.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenStore opens the backend selected by DATA_BACKEND.
func OpenStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.DataBackend {
	case config.BackendMemory:
		return storage.NewMemoryStore(), nil
	case config.BackendSQLite, "":
		st, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store %s: %w", cfg.SQLiteDBPath, err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}

// NewAllocator returns the id allocator selected by ID_STRATEGY.
func NewAllocator(cfg *config.Config) ledger.IDAllocator {
	if cfg.IDStrategy == config.IDStrategyCounter {
		return ledger.NewCounterAllocator(time.Now().UnixMilli())
	}
	return ledger.UUIDAllocator{}
}

// NewLedgerService wires the engine settings of cfg to store.
func NewLedgerService(cfg *config.Config, store storage.BookStore) *services.LedgerService {
	engine := ledger.NewEngine(NewAllocator(cfg), ledger.Settings{
		InvestmentSkimPercentage: decimal.NewFromFloat(cfg.InvestmentSkimPercentage),
	})
	return services.NewLedgerService(store, engine, services.LedgerConfig{
		OwnerID:         cfg.OwnerID,
		DefaultCurrency: cfg.DefaultCurrency,
		AlertThreshold:  cfg.CreditCardAlertThreshold,
	})
}

// ConnectAMQP returns a client, or nil when AMQP is disabled or unreachable.
func ConnectAMQP(cfg *config.Config, logger *applog.Logger) *amqp.Client {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled - notifications will not be published")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing without notifications", "error", err)
		return nil
	}
	logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// NewExporter builds the exporter for target. dir is only used by CSV.
func NewExporter(ctx context.Context, cfg *config.Config, target, dir string) (export.Exporter, error) {
	switch target {
	case ExportCSV, "":
		return export.CSVExporter{Dir: dir}, nil
	case ExportSheets:
		if !cfg.ExportConfigured() {
			return nil, fmt.Errorf("sheets export needs GOOGLE_SPREADSHEET_ID and a service account")
		}
		creds, err := cfg.ServiceAccountCredentials()
		if err != nil {
			return nil, err
		}
		return export.NewSheetsExporter(ctx, cfg.GoogleSpreadsheetID, creds)
	default:
		return nil, fmt.Errorf("unknown export target %q", target)
	}
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. cleanup
// runs after the signal and may take up to timeout. done is closed after it.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}
