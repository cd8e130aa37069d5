package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pusher/pusher-http-go/v5"
	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/balance"
	"github.com/putridahliana91-coder/senoplan/internal/config"
	"github.com/putridahliana91-coder/senoplan/internal/event"
	"github.com/putridahliana91-coder/senoplan/internal/game/admin"
	"github.com/putridahliana91-coder/senoplan/internal/game/bet"
	"github.com/putridahliana91-coder/senoplan/internal/game/category"
	"github.com/putridahliana91-coder/senoplan/internal/game/fair"
	"github.com/putridahliana91-coder/senoplan/internal/game/round"
	"github.com/putridahliana91-coder/senoplan/internal/game/session"
	"github.com/putridahliana91-coder/senoplan/internal/game/settle"
	adminbets "github.com/putridahliana91-coder/senoplan/internal/http-server/handlers/admin/bets"
	adminoverride "github.com/putridahliana91-coder/senoplan/internal/http-server/handlers/admin/override"
	adminplayers "github.com/putridahliana91-coder/senoplan/internal/http-server/handlers/admin/players"
	"github.com/putridahliana91-coder/senoplan/internal/http-server/handlers/game/place"
	"github.com/putridahliana91-coder/senoplan/internal/http-server/handlers/game/state"
	"github.com/putridahliana91-coder/senoplan/internal/http-server/handlers/player/login"
	"github.com/putridahliana91-coder/senoplan/internal/http-server/handlers/player/register"
	walletapi "github.com/putridahliana91-coder/senoplan/internal/http-server/handlers/player/wallet"
	mwlogger "github.com/putridahliana91-coder/senoplan/internal/http-server/middleware/logger"
	"github.com/putridahliana91-coder/senoplan/internal/job"
	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
	"github.com/putridahliana91-coder/senoplan/internal/model"
	"github.com/putridahliana91-coder/senoplan/internal/player"
	"github.com/putridahliana91-coder/senoplan/internal/repository"
	"github.com/putridahliana91-coder/senoplan/internal/store"
	"github.com/putridahliana91-coder/senoplan/internal/wallet"
	"github.com/putridahliana91-coder/senoplan/internal/ws"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting server...", slog.String("env", cfg.Env))
	log.Debug("debug messages are enabled")

	st, err := setupStore(cfg)
	if err != nil {
		log.Error("Failed to init store", sl.Err(err))
		os.Exit(1)
	}
	defer st.Close()

	hub := ws.NewHub(log)
	hub.RunServer()

	events := event.Multi{hub}
	if cfg.Pusher.Enabled {
		client := &pusher.Client{
			AppID:   cfg.Pusher.AppID,
			Key:     cfg.Pusher.Key,
			Secret:  cfg.Pusher.Secret,
			Cluster: cfg.Pusher.Cluster,
		}
		events = append(events, event.NewPusherPublisher(log, client))
	}

	roundRepo := repository.NewRoundRepository(st, log)
	wagerRepo := repository.NewWagerRepository(st, log)
	playerRepo := repository.NewPlayerRepository(st, log)
	historyRepo := repository.NewHistoryRepository(st, log)
	withdrawRepo := repository.NewWithdrawRepository(st, log)
	chatRepo := repository.NewChatRepository(st, log)

	queue := job.NewQueue(cfg.Game.JobQueueSize)
	pool := job.NewWorkerPool(cfg.Game.WorkerPoolSize, queue)
	pool.Start()

	balanceSvc := balance.New(playerRepo, historyRepo, events, log)
	registry := player.NewRegistry(playerRepo, balanceSvc, cfg.Game.StartingBalance, log)
	ledger := bet.NewLedger(wagerRepo, playerRepo, balanceSvc, events, log)
	engine := settle.NewEngine(wagerRepo, roundRepo, historyRepo, balanceSvc, events, log)
	walletSvc := wallet.New(playerRepo, historyRepo, withdrawRepo, chatRepo, balanceSvc, queue, log)

	drawer := fair.NewDigitDrawer(log)
	override := round.NewOverrideChannel(roundRepo, drawer, events, log)
	console := admin.NewConsole(ledger, override, balanceSvc, playerRepo, wagerRepo,
		withdrawRepo, chatRepo, queue, events, log)

	sessions := session.NewManager(ledger, roundRepo, wagerRepo, playerRepo,
		historyRepo, events, log, cfg.Game.SyncInterval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timers := map[model.ServerID]int64{
		model.Server1: cfg.Game.Server1Seri,
		model.Server2: cfg.Game.Server2Seri,
	}
	for server, seri := range timers {
		t := round.NewTimer(server, roundRepo, drawer, engine, queue, events, log,
			cfg.Game.RoundSeconds, seri)
		go t.Run(ctx, cfg.Game.TickInterval)
	}

	betHandler := place.NewBet(log, sessions)
	stateHandler := state.NewState(log, roundRepo, category.Tags)
	registerHandler := register.NewRegister(log, registry)
	loginHandler := login.NewLogin(log, sessions)
	walletHandler := walletapi.NewWallet(log, playerRepo, historyRepo, walletSvc)
	overrideHandler := adminoverride.NewOverride(log, console)
	betsHandler := adminbets.NewBets(log, console)
	playersHandler := adminplayers.NewPlayers(log, console, registry)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Get("/ws", hub.HandleConnection)

	router.Route("/game/{server}", func(r chi.Router) {
		r.Get("/state", stateHandler.New())
		r.Get("/results", stateHandler.Results())
		r.Post("/place-bet", betHandler.New())
	})

	router.Post("/player/register", registerHandler.New())
	router.Post("/player/login", loginHandler.New())
	router.Post("/player/logout", loginHandler.Logout())
	router.Route("/player/{id}", func(r chi.Router) {
		r.Get("/balance", walletHandler.Balance())
		r.Get("/bets", walletHandler.Bets())
		r.Get("/transactions", walletHandler.Transactions())
		r.Post("/withdraw", walletHandler.Withdraw())
		r.Get("/chat", walletHandler.Messages())
		r.Post("/chat", walletHandler.SendChat())
	})

	router.Route("/admin", func(r chi.Router) {
		r.Post("/override/{server}", overrideHandler.Set())
		r.Delete("/override/{server}", overrideHandler.Clear())

		r.Get("/bets", betsHandler.Groups())
		r.Post("/bets/reassign", betsHandler.Reassign())
		r.Delete("/bets/{id}", betsHandler.Cancel())

		r.Get("/players", playersHandler.List())
		r.Route("/players/{id}", func(r chi.Router) {
			r.Post("/balance", playersHandler.AddBalance())
			r.Post("/bonus", playersHandler.Bonus())
			r.Post("/reset-balance", playersHandler.ResetBalance())
			r.Post("/block", playersHandler.SetBlocked())
			r.Post("/chat", playersHandler.Reply())
			r.Delete("/", playersHandler.Delete())
		})

		r.Get("/withdrawals", playersHandler.Withdrawals())
		r.Post("/withdrawals/{id}", playersHandler.ResolveWithdrawal())
	})

	log.Info("Server started", slog.String("address", cfg.HTTPServer.Address))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Failed to shut down server", sl.Err(err))
		}
	}()

	if err = srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("Server failed", sl.Err(err))
	}

	log.Error("Server stopped")
}

func setupStore(cfg *config.Config) (store.Store, error) {
	if cfg.Store.Backend == "redis" {
		return store.NewRedis(cfg.Store.RedisAddr)
	}

	return store.NewMemory(), nil
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}
