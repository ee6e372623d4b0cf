// Command meallogger is an offline-first meal log that syncs through a
// Google Sheets spreadsheet shared between devices.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hkaya/meallogger/internal/auth"
	"github.com/hkaya/meallogger/internal/config"
	"github.com/hkaya/meallogger/internal/db"
	"github.com/hkaya/meallogger/internal/logging"
	"github.com/hkaya/meallogger/internal/settings"
	"github.com/hkaya/meallogger/internal/sheets"
	"github.com/hkaya/meallogger/internal/sync"
)

var _ sync.RemoteStore = (*sheets.Client)(nil)
var _ sync.MealStore = (*db.Store)(nil)
var _ sync.SettingsStore = (*settings.Store)(nil)

var rootCmd = &cobra.Command{
	Use:   "meallogger",
	Short: "Offline-first meal log with Google Sheets sync",
	Long: `meallogger keeps a local meal log and reconciles it with a Google
Sheets spreadsheet so the same log can be kept from several devices.

All commands work offline; sync happens only when requested (or in the
background via 'meallogger watch').`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// app wires the long-lived collaborators for one command invocation.
type app struct {
	cfg      *config.Config
	database *db.DB
	store    *db.Store
	settings *settings.Store
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Init(os.Stderr, cfg.Logger.Level)

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	if err := db.NewMigrator(database.DB).Up(); err != nil {
		database.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		database: database,
		store:    db.NewStore(database),
		settings: settings.NewStore(database),
	}, nil
}

func (a *app) close() {
	a.store.Close()
	a.database.Close()
}

// tokenProvider prefers the environment override, then the credential cached
// in the device settings.
func (a *app) tokenProvider() (*auth.StaticProvider, error) {
	if a.cfg.GoogleAccessToken != "" {
		return auth.NewStaticProvider(a.cfg.GoogleAccessToken), nil
	}
	cfg, err := a.settings.Load()
	if err != nil {
		return nil, err
	}
	return auth.NewStaticProvider(cfg.AccessToken), nil
}

// engine builds the sync engine over a live remote client. It fails when no
// credential is available; offline commands never call it.
func (a *app) engine(ctx context.Context) (*sync.Engine, error) {
	provider, err := a.tokenProvider()
	if err != nil {
		return nil, err
	}
	if !provider.HasValidCredential() {
		return nil, fmt.Errorf("not authenticated: run 'meallogger auth set-token' or set GOOGLE_ACCESS_TOKEN")
	}

	cfg, err := a.settings.Load()
	if err != nil {
		return nil, err
	}
	client, err := sheets.NewClient(ctx, provider, cfg.SheetID)
	if err != nil {
		return nil, err
	}

	engine := sync.NewEngine(a.store, client, provider, a.settings)
	engine.SetStatusListener(&consoleListener{})
	return engine, nil
}

// sheetsClient builds a bare remote client for target selection commands
// that do not need the full engine.
func (a *app) sheetsClient(ctx context.Context) (*sheets.Client, error) {
	provider, err := a.tokenProvider()
	if err != nil {
		return nil, err
	}
	if !provider.HasValidCredential() {
		return nil, fmt.Errorf("not authenticated: run 'meallogger auth set-token' or set GOOGLE_ACCESS_TOKEN")
	}
	cfg, err := a.settings.Load()
	if err != nil {
		return nil, err
	}
	return sheets.NewClient(ctx, provider, cfg.SheetID)
}

// consoleListener renders sync status and toasts on stdout.
type consoleListener struct{}

func (consoleListener) OnSyncStatus(status sync.Status, label string) {
	switch status {
	case sync.StatusSyncing:
		if label != "" {
			fmt.Printf("⏳ %s\n", label)
		} else {
			fmt.Println("⏳ Syncing...")
		}
	case sync.StatusSynced:
		if label != "" {
			fmt.Printf("✓ Synced with %s\n", label)
		} else {
			fmt.Println("✓ Synced")
		}
	case sync.StatusError:
		fmt.Println("✗ Sync error")
	}
}

func (consoleListener) OnToast(message, kind string) {
	if kind == "error" {
		fmt.Fprintln(os.Stderr, message)
		return
	}
	fmt.Println(message)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
