package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/killallgit/liftchat/pkg/api"
	"github.com/killallgit/liftchat/pkg/auth"
	"github.com/killallgit/liftchat/pkg/chat"
	"github.com/killallgit/liftchat/pkg/config"
	"github.com/killallgit/liftchat/pkg/logger"
	"github.com/killallgit/liftchat/pkg/session"
	"github.com/killallgit/liftchat/pkg/storage"
	"github.com/killallgit/liftchat/pkg/tui"
	tuichat "github.com/killallgit/liftchat/pkg/tui/chat"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// app holds what every subcommand shares once config is loaded
type app struct {
	cfg   *config.Config
	store storage.Store
	log   *zap.SugaredLogger
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if err := logger.Init(cfg.Logging); err != nil {
		return nil, err
	}

	store, err := openStore(cfg.Storage)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	return &app{
		cfg:   cfg,
		store: store,
		log:   logger.WithComponent("app"),
	}, nil
}

func (a *app) close() {
	if err := logger.Close(); err != nil {
		// The log file is gone, stderr is all that is left
		_, _ = os.Stderr.WriteString("warning: failed to close log: " + err.Error() + "\n")
	}
}

func openStore(cfg config.StorageConfig) (storage.Store, error) {
	if cfg.Ephemeral {
		return storage.NewMemoryStore(), nil
	}
	store, err := storage.NewFileStore(cfg.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open local store")
	}
	return store, nil
}

// tokenSource reads the stored token for every request so a login in
// another terminal is picked up without restarting
func (a *app) tokenSource() api.TokenSource {
	if !a.cfg.API.SendToken {
		return nil
	}
	return func(ctx context.Context) string {
		token, ok, err := a.store.Get(ctx, storage.KeyToken)
		if err != nil {
			a.log.Warnw("failed to read token", "error", err)
			return ""
		}
		if !ok {
			return ""
		}
		if auth.Inspect(token).Expired(time.Now()) {
			a.log.Infow("stored token has expired, sending it anyway")
		}
		return token
	}
}

func (a *app) newTransport() *api.Client {
	return api.NewClient(api.Options{
		UserAgent:    a.cfg.API.UserAgent,
		StreamMethod: a.cfg.API.StreamMethod,
		Token:        a.tokenSource(),
	})
}

func newLimiter(cfg config.TransportConfig) *rate.Limiter {
	if cfg.AttemptsPerSecond <= 0 {
		return nil
	}
	burst := cfg.AttemptBurst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.AttemptsPerSecond), burst)
}

func (a *app) newController(ctx context.Context, view chat.View) (*chat.Controller, error) {
	sessionID, err := session.GetOrCreateSessionID(ctx, a.store)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get session id")
	}

	var interval time.Duration
	if a.cfg.UI.ShowElapsed {
		interval = time.Second
	}

	controller, err := chat.NewController(a.newTransport(), view, sessionID, chat.Options{
		BaseURLs: a.cfg.API.BaseURLs,
		Timeouts: chat.Timeouts{
			StreamStart: a.cfg.Timeouts.StreamStart,
			StreamIdle:  a.cfg.Timeouts.StreamIdle,
			Buffered:    a.cfg.Timeouts.Buffered,
		},
		Limiter:          newLimiter(a.cfg.Transport),
		ThinkingInterval: interval,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chat controller")
	}
	return controller, nil
}

// signalContext is cancelled on Ctrl-C so a pending exchange reports
// cancellation instead of the process dying mid-write
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}

func runInteractive(cmd *cobra.Command) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	// bubbletea handles Ctrl-C as a key, so no signal context here
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	view := tuichat.NewProgramView()
	controller, err := a.newController(ctx, view)
	if err != nil {
		return err
	}

	return tui.Run(ctx, tui.AppOptions{
		View:        view,
		Sender:      controller,
		SessionID:   controller.SessionID(),
		Style:       a.cfg.UI.Style,
		WordWrap:    a.cfg.UI.WordWrap,
		ShowElapsed: a.cfg.UI.ShowElapsed,
	})
}
