package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/backend"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/config"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/service"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/session"
	pkglogger "github.com/Tuhin-ninja/the-freelancer-frontend-sub001/pkg/logger"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "chat",
		Short:         "Freelancer marketplace direct messages in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default configs/config.<APP_ENV>.yaml)")

	rootCmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newConversationsCmd(),
		newThreadCmd(),
		newSendCmd(),
		newSearchCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app everything a command needs, built once per invocation
type app struct {
	cfg     *config.Config
	session *session.Manager
	client  *backend.Client
	logFile io.Closer
}

// bootstrap loads config, starts logging and restores the persisted session.
// Interactive mode logs to a file so the terminal stays clean.
func bootstrap(ctx context.Context, interactive bool) (*app, error) {
	dotenvFiles := config.LoadDotEnv()

	path := configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	opts := pkglogger.Options{Env: cfg.App.Env, Service: "freelancer-chat", Level: cfg.Log.Level, Output: os.Stderr}
	if interactive || cfg.Log.File != "" {
		logPath := cfg.Log.File
		if logPath == "" {
			logPath = filepath.Join(filepath.Dir(cfg.Session.DBPath), "chat.log")
		}
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		opts.Output = f
		a.logFile = f
	}
	pkglogger.InitStructured(opts)
	pkglogger.GetLogger().Info().Strs("env_files", dotenvFiles).Str("config", path).Msg("starting chat client")
	config.LogResolved(cfg)

	store, err := session.OpenSQLiteStore(cfg.Session.DBPath)
	if err != nil {
		return nil, err
	}
	a.session = session.NewManager(store)
	if err := a.session.Restore(ctx); err != nil {
		return nil, err
	}
	a.session.OnExpired(func() {
		pkglogger.GetLogger().Warn().Msg("session expired, login required")
	})

	a.client = backend.NewClient(backend.Options{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
	}, a.session)
	return a, nil
}

func (a *app) close() {
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

func (a *app) messenger() service.MessengerService {
	return service.NewMessengerService(service.MessengerDeps{
		Backend:        a.client,
		Users:          a.session,
		ThreadPageSize: a.cfg.Chat.ThreadPageSize,
		ResolveWorkers: a.cfg.Chat.ResolveWorkers,
	})
}

// requireSession fails with a login hint when nobody is signed in
func (a *app) requireSession() error {
	if a.session.AccessToken() == "" {
		return errLoginRequired
	}
	return nil
}

var errLoginRequired = errors.New("not signed in, run `chat login` first")
