package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Brisa-Ol/loteplan-client/session"
	"github.com/Brisa-Ol/loteplan-client/storage/bbolt"
	"github.com/Brisa-Ol/loteplan-client/transport"
)

// Version is the client version, set at build time.
var Version = "dev"

var errNotLoggedIn = errors.New("inicia sesión primero con `loteplan login`")

var (
	apiURL  string
	dataDir string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "loteplan",
	Short: "Loteplan is the command-line client for the Loteplan investment platform",
	Long: `Command-line client for the Loteplan real-estate savings and investment
platform: subscribe to payment plans, invest in lots, pay installments and
settle auction wins from the terminal.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	defaultURL := os.Getenv("LOTEPLAN_API_URL")
	if defaultURL == "" {
		defaultURL = "https://api.loteplan.com/v1"
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "Base URL of the Loteplan API")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "Directory for persistent client data")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".loteplan"
	}
	return filepath.Join(home, ".loteplan")
}

// app bundles the wired client components a command needs.
type app struct {
	gw      *transport.Gateway
	session *session.Store
	store   *bbolt.Store
	log     *slog.Logger
}

// newApp wires storage, transport and session together. The returned cleanup
// closes the credential database.
func newApp() (*app, func(), error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := bbolt.Open(filepath.Join(dataDir, "credentials.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open credential storage: %w", err)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	gw := transport.New(apiURL, transport.WithLogger(logger))
	sess := session.New(gw, store,
		session.WithLogger(logger),
		session.WithLocator(&consoleLocator{}),
	)

	a := &app{gw: gw, session: sess, store: store, log: logger}
	return a, func() { store.Close() }, nil
}

// consoleLocator satisfies session.Locator for a terminal client: there is
// no real navigation, only a notice that re-authentication is needed.
type consoleLocator struct {
	path string
}

func (l *consoleLocator) CurrentPath() string {
	if l.path == "" {
		return "/"
	}
	return l.path
}

func (l *consoleLocator) Navigate(path string) {
	l.path = path
	if path == session.EntryPath {
		fmt.Fprintln(os.Stderr, "Tu sesión ha terminado. Ejecuta `loteplan login` para continuar.")
	}
}
