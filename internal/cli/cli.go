// Package cli implements the vetra command line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vetraconnect/vetra/pkg/auth"
	"github.com/vetraconnect/vetra/pkg/sessionstore"
	"github.com/vetraconnect/vetra/pkg/slogx"
	"github.com/vetraconnect/vetra/pkg/vetra"
)

// version is overridden at build time.
var version = "dev"

type app struct {
	email         string
	password      string
	spin          string
	format        string
	logLevel      string
	logFormat     string
	sessionCache  string
	timeout       time.Duration
	disableEvents bool
	anonymize     bool

	log    *slog.Logger
	client *vetra.Client
	store  *sessionstore.Store
	out    io.Writer
	errOut io.Writer
}

// Execute runs the command line client. Errors are already printed when it
// returns.
func Execute(ctx context.Context) error {
	a := &app{out: os.Stdout, errOut: os.Stderr}
	err := a.newRoot().ExecuteContext(ctx)
	a.close()
	if err != nil {
		a.printError(err)
	}
	return err
}

func (a *app) newRoot() *cobra.Command {
	if a.log == nil {
		a.log = slogx.Discard()
	}

	root := &cobra.Command{
		Use:           "vetra",
		Short:         "Command line client for the Vetra Connect API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.email, "email", os.Getenv("VETRA_EMAIL"), "account email (env VETRA_EMAIL)")
	flags.StringVar(&a.password, "password", os.Getenv("VETRA_PASSWORD"), "account password (env VETRA_PASSWORD)")
	flags.StringVar(&a.spin, "spin", os.Getenv("VETRA_SPIN"), "s-pin for privileged operations (env VETRA_SPIN)")
	flags.StringVar(&a.format, "format", getEnvOrDefault("VETRA_FORMAT", formatYAML), "output format, json or yaml (env VETRA_FORMAT)")
	flags.StringVar(&a.logLevel, "log-level", getEnvOrDefault("VETRA_LOG_LEVEL", "warn"), "log level (env VETRA_LOG_LEVEL)")
	flags.StringVar(&a.logFormat, "log-format", getEnvOrDefault("VETRA_LOG_FORMAT", "text"), "log format, json or text (env VETRA_LOG_FORMAT)")
	flags.StringVar(&a.sessionCache, "session-cache", getEnvOrDefault("VETRA_SESSION_CACHE", defaultSessionCache()), "path to the session cache database (env VETRA_SESSION_CACHE)")
	flags.DurationVar(&a.timeout, "timeout", getEnvDurationOrDefault("VETRA_TIMEOUT", 5*time.Minute), "time budget per command (env VETRA_TIMEOUT)")
	flags.BoolVar(&a.disableEvents, "disable-events", false, "skip the event broker, commands return once the API accepts them")

	a.addRequestCommands(root)
	a.addOperationCommands(root)
	a.addStreamCommands(root)
	root.AddCommand(a.newFixturesCommand())
	return root
}

// connect logs in, reusing a cached session when one exists. withEvents
// asks for the event stream; --disable-events still wins.
func (a *app) connect(ctx context.Context, withEvents bool) error {
	if a.client != nil {
		return nil
	}
	if a.email == "" || a.password == "" {
		return errors.New("email and password are required, set --email/--password or VETRA_EMAIL/VETRA_PASSWORD")
	}

	a.log = slogx.New(slogx.Config{
		Service: "vetra",
		Version: version,
		Level:   a.logLevel,
		Format:  a.logFormat,
	})

	cfg := vetra.Config{
		IdentityURL:      os.Getenv("VETRA_IDENTITY_URL"),
		APIBase:          os.Getenv("VETRA_API_BASE"),
		Broker:           os.Getenv("VETRA_BROKER"),
		DisableEvents:    a.disableEvents || !withEvents,
		OperationTimeout: a.timeout,
		Log:              a.log,
	}
	client, err := vetra.New(cfg)
	if err != nil {
		return err
	}

	a.openStore()
	if session, ok := a.cachedSession(ctx); ok {
		if err := client.Resume(ctx, a.email, a.password, session); err == nil {
			a.client = client
			a.saveSession(ctx)
			return nil
		}
		a.log.Warn("cached session rejected, logging in again")
		client.Disconnect()
		if client, err = vetra.New(cfg); err != nil {
			return err
		}
	}
	if err := client.Connect(ctx, a.email, a.password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	a.client = client
	a.saveSession(ctx)
	return nil
}

func (a *app) close() {
	if a.client != nil {
		a.saveSession(context.Background())
		a.client.Disconnect()
		a.client = nil
	}
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
}

// openStore opens the session cache. The cache is an optimization, so a
// broken cache only logs a warning.
func (a *app) openStore() {
	if err := os.MkdirAll(filepath.Dir(a.sessionCache), 0o700); err != nil {
		a.log.Warn("session cache unavailable", "path", a.sessionCache, "error", err)
		return
	}
	store, err := sessionstore.Open(a.sessionCache)
	if err != nil {
		a.log.Warn("session cache unavailable", "path", a.sessionCache, "error", err)
		return
	}
	a.store = store
}

func (a *app) cachedSession(ctx context.Context) (auth.Session, bool) {
	if a.store == nil {
		return auth.Session{}, false
	}
	session, err := a.store.Load(ctx, a.email)
	if err != nil {
		if !errors.Is(err, sessionstore.ErrNotFound) {
			a.log.Warn("loading cached session failed", "error", err)
		}
		return auth.Session{}, false
	}
	return session, true
}

func (a *app) saveSession(ctx context.Context) {
	if a.store == nil || a.client == nil {
		return
	}
	session, err := a.client.Session()
	if err != nil {
		return
	}
	if err := a.store.Save(ctx, a.email, session); err != nil {
		a.log.Warn("saving session failed", "error", err)
	}
}

// commandContext bounds one command invocation.
func (a *app) commandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}

func (a *app) eventsEnabled() bool {
	return !a.disableEvents
}

func (a *app) requireSpin() error {
	if a.spin == "" {
		return errors.New("this operation needs the s-pin, set --spin or VETRA_SPIN")
	}
	return nil
}

func defaultSessionCache() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "vetra-sessions.db"
	}
	return filepath.Join(dir, "vetra", "sessions.db")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
