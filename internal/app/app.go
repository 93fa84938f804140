package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"morningbot/internal/broadcast"
	"morningbot/internal/config"
	"morningbot/internal/content"
	"morningbot/internal/guard"
	"morningbot/internal/scheduler"
	"morningbot/internal/store"
	"morningbot/internal/telegram"
)

const citationMinInterval = time.Second

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.Repo
	router  *telegram.Router
	sched   *scheduler.Scheduler
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting morningbot",
		zap.String("username", a.bot.Self.UserName),
		zap.String("tz", a.cfg.Timezone),
		zap.String("http", a.cfg.HTTPAddr),
	)

	// One process per registry.
	lock, err := acquireInstanceLock(a.cfg.LockPath)
	if err != nil {
		a.log.Error("instance lock failed", zap.Error(err))
		return err
	}
	defer lock.Release()

	// Open SQLite and run migrations.
	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready")

	clock := clockwork.NewRealClock()
	provider := content.New(a.log, a.cfg.UnsplashKey)
	sender := telegram.NewSender(a.bot, a.log)
	dispatcher := broadcast.New(repo, provider, sender,
		guard.New("broadcast", guard.DefaultMinInterval, a.log, clock),
		guard.New("citation", citationMinInterval, a.log, clock),
		a.log,
	)
	a.router = telegram.NewRouter(a.bot, a.log, repo, dispatcher)

	sched, err := scheduler.New(a.triggers(), a.cfg.Timezone, dispatcher, a.log)
	if err != nil {
		a.log.Error("scheduler init failed", zap.Error(err))
		_ = repo.Close()
		return err
	}
	a.sched = sched

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	// Long polling; the client retries failed update fetches internally,
	// so a transport hiccup never terminates the loop.
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.sched.Start(ctx)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.shutdown()
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

// triggers builds the configured broadcast triggers. An empty cron spec
// disables its trigger, so a one-broadcast deployment is just
// EVENING_CRON="".
func (a *App) triggers() []scheduler.Trigger {
	var ts []scheduler.Trigger
	if a.cfg.MorningCron != "" {
		ts = append(ts, scheduler.Trigger{Spec: a.cfg.MorningCron, Kind: broadcast.KindMorning})
	}
	if a.cfg.EveningCron != "" {
		ts = append(ts, scheduler.Trigger{Spec: a.cfg.EveningCron, Kind: broadcast.KindEvening})
	}
	return ts
}

// shutdown stops trigger sources first, lets an in-flight cycle drain,
// then releases resources.
func (a *App) shutdown() {
	a.bot.StopReceivingUpdates()
	a.sched.Stop()

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := a.httpSrv.Shutdown(shCtx)
	cancel()
	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}

	if a.repo != nil {
		_ = a.repo.Close()
	}
}
