// ABOUTME: Entry point for the Telegram bot
// ABOUTME: Loads config, opens the store, seeds catalogs, and runs the dispatcher

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/ArsKF/tg-bot-simple/internal/bot"
	"github.com/ArsKF/tg-bot-simple/internal/config"
	"github.com/ArsKF/tg-bot-simple/internal/openrouter"
	"github.com/ArsKF/tg-bot-simple/internal/selector"
	"github.com/ArsKF/tg-bot-simple/internal/store"
	"github.com/ArsKF/tg-bot-simple/internal/weather"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _               _           _
| |_ __ _       | |__   ___ | |_
| __/ _' |_____ | '_ \ / _ \| __|
| || (_| |_____|| |_) | (_) | |_
 \__\__, |      |_.__/ \___/ \__|
    |___/
`

// getConfigPath returns the path to the bot config file.
// Priority: TGBOT_CONFIG env var > XDG_CONFIG_HOME/tg-bot/config.yaml > ~/.config/tg-bot/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("TGBOT_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "tg-bot", "config.yaml")
}

// getDataPath returns the path to the bot data directory.
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "tg-bot")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: tg-bot <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve   Start the bot")
		fmt.Println("  init    Create a new config file interactively")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	// Optional .env next to the binary; config ${VAR} references pick it up.
	_ = godotenv.Load()

	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	green.Print("    ▶ ")
	fmt.Printf("Models:   %d configured\n", len(cfg.Catalog.Models))
	fmt.Println()

	logger.Info("starting tg-bot",
		"config", configPath,
		"database", cfg.Database.Path,
	)

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	if err := seedCatalogs(ctx, s, cfg.Catalog); err != nil {
		return fmt.Errorf("seeding catalogs: %w", err)
	}

	b, err := bot.New(cfg.Telegram.Token, bot.Options{
		Store:    s,
		Selector: selector.New(s),
		LLM:      openrouter.New(cfg.OpenRouter.BaseURL, cfg.OpenRouter.APIKey),
		Weather:  weather.New(""),
		Ask: bot.AskSettings{
			Temperature: *cfg.OpenRouter.Temperature,
			MaxTokens:   cfg.OpenRouter.MaxTokens,
			Timeout:     cfg.OpenRouter.Timeout,
		},
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("creating bot: %w", err)
	}

	return b.Run(ctx)
}

// seedCatalogs inserts configured models and characters. Existing rows keep
// their state; seeding is additive.
func seedCatalogs(ctx context.Context, s *store.SQLiteStore, catalog config.CatalogConfig) error {
	models := make([]*store.Model, len(catalog.Models))
	for i, m := range catalog.Models {
		models[i] = &store.Model{ID: m.ID, Key: m.Key, Label: m.Label}
	}
	if err := s.SeedModels(ctx, models); err != nil {
		return fmt.Errorf("seeding models: %w", err)
	}

	characters := make([]*store.Character, len(catalog.Characters))
	for i, c := range catalog.Characters {
		characters[i] = &store.Character{ID: c.ID, Name: c.Name, Prompt: c.Prompt}
	}
	if err := s.SeedCharacters(ctx, characters); err != nil {
		return fmt.Errorf("seeding characters: %w", err)
	}

	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	// Handler-level attrs first (from WithAttrs), then record attrs.
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("tg-bot configuration setup")
	fmt.Println("==========================")
	fmt.Println()

	defaultConfigPath := getConfigPath()
	defaultDbPath := filepath.Join(getDataPath(), "bot.db")

	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Telegram ---")
	token := prompt(reader, "Bot token (or ${TELEGRAM_TOKEN} to read from env)", "${TELEGRAM_TOKEN}")

	fmt.Println("\n--- OpenRouter ---")
	apiKey := prompt(reader, "API key (or ${OPENROUTER_API_KEY} to read from env)", "${OPENROUTER_API_KEY}")
	timeout := prompt(reader, "Request timeout", "30s")

	fmt.Println("\n--- Database ---")
	dbPath := prompt(reader, "SQLite database path", defaultDbPath)

	fmt.Println("\n--- Logging ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	var cfg strings.Builder
	cfg.WriteString("# tg-bot configuration\n")
	cfg.WriteString("# Generated by tg-bot init\n\n")

	cfg.WriteString("telegram:\n")
	cfg.WriteString(fmt.Sprintf("  token: \"%s\"\n", token))
	cfg.WriteString("\n")

	cfg.WriteString("openrouter:\n")
	cfg.WriteString(fmt.Sprintf("  api_key: \"%s\"\n", apiKey))
	cfg.WriteString("  temperature: 0.2\n")
	cfg.WriteString("  max_tokens: 400\n")
	cfg.WriteString(fmt.Sprintf("  timeout: \"%s\"\n", timeout))
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: \"%s\"\n", dbPath))
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))
	cfg.WriteString("\n")

	cfg.WriteString("catalog:\n")
	cfg.WriteString("  models:\n")
	cfg.WriteString("    - id: 1\n")
	cfg.WriteString("      key: \"deepseek/deepseek-chat-v3-0324:free\"\n")
	cfg.WriteString("      label: \"DeepSeek V3\"\n")
	cfg.WriteString("  characters:\n")
	cfg.WriteString("    - id: 1\n")
	cfg.WriteString("      name: \"Assistant\"\n")
	cfg.WriteString("      prompt: \"You are a helpful assistant. Answer briefly.\"\n")

	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	dataDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Println("\nTo start the bot:")
	fmt.Printf("  tg-bot serve\n")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
