package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hanulzine/webzine/internal/api"
	"github.com/hanulzine/webzine/internal/counter"
	"github.com/hanulzine/webzine/internal/spam"
	"github.com/hanulzine/webzine/internal/store"
	"github.com/hanulzine/webzine/internal/util"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for webzine state data
	DefaultStateDir = "/var/lib/webzine"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "webzine.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	// Build module options
	storeOpts := buildStoreOptions(flags)
	counterOpts := buildCounterOptions(config)
	spamOpts := buildSpamOptions(config)
	apiOpts := buildAPIOptions(flags)

	slog.Info("Bootstrapping webzine engine with configured modules")
	slog.Debug("Module options counts", "store", len(storeOpts), "counter", len(counterOpts), "spam", len(spamOpts), "api", len(apiOpts))
	if err := api.Run(storeOpts, counterOpts, spamOpts, apiOpts); err != nil {
		slog.Error("Webzine engine failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Webzine engine exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL     string
	StateDir        string
	APIAddr         string
	AdminJWTSecret  string
	LikeTTL         time.Duration
	LikeSweep       time.Duration
	ViewTTL         time.Duration
	ViewSweep       time.Duration
	MinLength       int
	RepeatThreshold int
}

// Flags holds command line flag values
type Flags struct {
	stateDir       *string
	dbDSN          *string
	apiAddr        *string
	adminJWTSecret *string
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		StateDir:        os.Getenv("WEBZINE_STATE_DIR"),
		APIAddr:         os.Getenv("API_ADDR"),
		AdminJWTSecret:  os.Getenv("ADMIN_JWT_SECRET"),
		LikeTTL:         util.ParseMillisEnv("LIKE_DEDUP_TTL_MS", counter.DefaultLikeTTL),
		LikeSweep:       util.ParseMillisEnv("LIKE_DEDUP_SWEEP_MS", counter.DefaultLikeSweep),
		ViewTTL:         util.ParseMillisEnv("VIEW_DEDUP_TTL_MS", counter.DefaultViewTTL),
		ViewSweep:       util.ParseMillisEnv("VIEW_DEDUP_SWEEP_MS", counter.DefaultViewSweep),
		MinLength:       util.ParseIntEnv("COMMENT_MIN_LENGTH", spam.DefaultMinLength),
		RepeatThreshold: util.ParseIntEnv("COMMENT_REPEATED_CHAR_THRESHOLD", spam.DefaultRepeatThreshold),
	}

	// Default to SQLite in the state directory when no database URL is set
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No WEBZINE_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"WEBZINE_STATE_DIR", config.StateDir,
		"API_ADDR", config.APIAddr,
		"ADMIN_JWT_SECRET_SET", config.AdminJWTSecret != "",
		"LIKE_DEDUP_TTL", config.LikeTTL,
		"VIEW_DEDUP_TTL", config.ViewTTL)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:       flag.String("state-dir", config.StateDir, "state directory for webzine data (overrides $WEBZINE_STATE_DIR)"),
		dbDSN:          flag.String("db-dsn", config.DatabaseURL, "database DSN, PostgreSQL URL or SQLite path (overrides $DATABASE_URL)"),
		apiAddr:        flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		adminJWTSecret: flag.String("admin-jwt-secret", config.AdminJWTSecret, "HMAC secret for admin bearer tokens (overrides $ADMIN_JWT_SECRET)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"apiAddr", *flags.apiAddr,
		"adminJWTSecretSet", *flags.adminJWTSecret != "")

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "old_state_dir", config.StateDir, "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if !strings.Contains(*flags.dbDSN, "postgres://") && !strings.Contains(*flags.dbDSN, "host=") {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	return nil
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_type", "postgresql")
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
		} else {
			slog.Debug("Detected SQLite DSN, configuring SQLite store", "dsn_type", "sqlite", "db_path", *flags.dbDSN)
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
		}
	} else {
		slog.Debug("No database DSN provided, will use in-memory store")
	}
	return storeOpts
}

// buildCounterOptions constructs dedup window configuration options
func buildCounterOptions(config Config) []counter.Option {
	return []counter.Option{
		counter.WithLikeWindow(config.LikeTTL, config.LikeSweep),
		counter.WithViewWindow(config.ViewTTL, config.ViewSweep),
	}
}

// buildSpamOptions constructs spam classifier configuration options
func buildSpamOptions(config Config) []spam.Option {
	var spamOpts []spam.Option
	if config.MinLength != spam.DefaultMinLength {
		spamOpts = append(spamOpts, spam.WithMinLength(config.MinLength))
	}
	if config.RepeatThreshold != spam.DefaultRepeatThreshold {
		spamOpts = append(spamOpts, spam.WithRepeatThreshold(config.RepeatThreshold))
	}
	return spamOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.adminJWTSecret != "" {
		apiOpts = append(apiOpts, api.WithAdminJWTSecret(*flags.adminJWTSecret))
	}
	return apiOpts
}
