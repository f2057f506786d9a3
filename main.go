package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"roadfix/internal/api"
	"roadfix/internal/auth"
	"roadfix/internal/config"
	"roadfix/internal/dashboard"
	"roadfix/internal/geo"
	"roadfix/internal/health"
	"roadfix/internal/notify"
	"roadfix/internal/report"
	"roadfix/internal/session"
	"roadfix/internal/storage"
	"roadfix/internal/telegram"
	"roadfix/internal/translate"
	"roadfix/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var apiURL, stateFile, logFile string
	var debug bool

	flagSet := pflag.NewFlagSet("roadfix", pflag.ContinueOnError)
	flagSet.StringVar(&apiURL, "api-url", "", "complaint service base URL (overrides API_BASE_URL)")
	flagSet.StringVar(&stateFile, "state-file", "", "where the session and remembered e-mail are kept (overrides STATE_FILE)")
	flagSet.StringVar(&logFile, "log-file", "", "log destination while the UI runs (overrides LOG_FILE)")
	flagSet.BoolVar(&debug, "debug", false, "log HTTP traffic and skip Telegram sends")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if apiURL != "" {
		cfg.APIBaseURL = apiURL
	}
	if stateFile != "" {
		cfg.StateFile = stateFile
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if debug {
		cfg.DebugMode = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// The UI owns the terminal from here on.
	closeLog, err := redirectLog(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	log.Println("🚀 Starting roadfix...")
	log.Printf("  → API: %s\n", cfg.APIBaseURL)
	if cfg.DebugMode {
		log.Println("🐛 DEBUG MODE: HTTP traffic is logged, Telegram sends are skipped")
	}

	api.SetHTTPClient(api.NewHTTPClient(cfg.HTTPTimeout, cfg.HTTPMaxConns))

	log.Println("📋 Opening local state...")
	store := session.NewStore(storage.New(cfg.StateFile))
	client := api.New(cfg.APIBaseURL, store.Token, api.WithDebug(cfg.DebugMode))

	notes := notify.NewQueue(cfg.NotificationTTL, cfg.NotificationCapacity)
	defer notes.Close()

	tg := telegram.NewClient(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.DebugMode)
	if tg != nil {
		log.Println("  ✓ Telegram alert relay enabled")
		notes.AddSink(tg)
		defer tg.Wait()
	}

	ctx := context.Background()
	translator, err := translate.NewTranslator(ctx, cfg.TranslateAPIKey, cfg.TranslateTarget)
	if err != nil {
		log.Printf("⚠️  Translation disabled: %v\n", err)
		translator = nil
	}
	defer translator.Close()

	var locator geo.Locator = geo.StaticLocator{}
	if cfg.BrowserGeolocation {
		var override *geo.Position
		if cfg.DeviceLatitude != 0 || cfg.DeviceLongitude != 0 {
			override = &geo.Position{Latitude: cfg.DeviceLatitude, Longitude: cfg.DeviceLongitude, Accuracy: 10}
		}
		bl := geo.NewBrowserLocator(override, cfg.GeolocationTimeout)
		defer bl.Close()
		locator = bl
		log.Println("  ✓ Browser geolocation enabled")
	}

	monitor := health.NewMonitor()
	photoOpts := report.PhotoOptions{
		MaxBytes:     cfg.MaxPhotoBytes,
		MaxDimension: cfg.PhotoMaxDimension,
		JPEGQuality:  cfg.PhotoJPEGQuality,
	}

	model := tui.NewModel(tui.Services{
		Auth:      auth.NewService(client, store),
		Sessions:  store,
		Dashboard: dashboard.New(client, notes, dashboard.WithDebounce(cfg.FetchDebounce), dashboard.WithRecorder(monitor)),
		Notes:     notes,
		Submitter: report.NewSubmitter(client, notes, photoOpts),
		Monitor:   monitor,

		Locator:  locator,
		Geocoder: client,
		FallbackLocation: report.Location{
			Name:      cfg.DefaultLocation,
			Latitude:  cfg.DefaultLatitude,
			Longitude: cfg.DefaultLongitude,
		},
		PhotoOptions: photoOpts,

		Translator: translator,
		Telegram:   tg,
		ReportDir:  cfg.ReportDir,

		RequestTimeout: cfg.HTTPTimeout,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	log.Println("👋 roadfix stopped")
	return nil
}

// redirectLog sends the standard logger to path so log lines do not
// corrupt the UI.
func redirectLog(path string) (func(), error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `roadfix: report and track road damage from the terminal.

Citizens report potholes with a photo and location, workers move their
assigned complaints to Resolved, admins assign work and export reports.

Configuration is read from the environment and .env; flags override it.

Usage:
  roadfix [flags]

Flags:
%s`, flagSet.FlagUsages())
}
