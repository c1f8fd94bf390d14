package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"adhok_platform/internal/blob"
	"adhok_platform/internal/config"
	"adhok_platform/internal/http-server/handlers/api/auth"
	"adhok_platform/internal/http-server/handlers/api/bids"
	"adhok_platform/internal/http-server/handlers/api/chat"
	"adhok_platform/internal/http-server/handlers/api/deliverables"
	"adhok_platform/internal/http-server/handlers/api/files"
	"adhok_platform/internal/http-server/handlers/api/ping"
	"adhok_platform/internal/http-server/handlers/api/projects"
	mw "adhok_platform/internal/http-server/middleware"
	"adhok_platform/internal/metrics"
	"adhok_platform/internal/models/user"
	"adhok_platform/internal/notify"
	"adhok_platform/internal/storage/postgres"
	"adhok_platform/internal/workspace"
)

func main() {

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded", slog.String("error", err.Error()))
	}

	cfg, err := config.Load(configPath())
	if err != nil {
		log.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	storage, err := postgres.New(cfg.Postgres.Conn)
	if err != nil {
		log.Error("failed to connect to postgresql", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	uploader, err := blob.New(cfg.S3)
	if err != nil {
		log.Error("failed to create blob client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := notify.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	publisher := notify.NewPublisher(rdb, log)
	hub := notify.NewHub(rdb, log)

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	board := workspace.New(storage, publisher, log)

	router := chi.NewRouter()
	router.Use(metrics.Middleware)

	router.Get("/metrics", metrics.Handler().ServeHTTP)
	router.Get("/ws", hub.ServeWS)

	router.Route("/api", func(r chi.Router) {
		r.Get("/ping", ping.New(log))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", auth.NewRegister(log, storage, cfg.JWT))
			r.Post("/login", auth.NewLogin(log, storage, cfg.JWT))
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticator(log, cfg.JWT.Secret))

			r.Get("/me", auth.NewMe(log, storage))

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projects.NewGetProjects(log, storage))
				r.Get("/my", projects.NewGetMyProjects(log, storage))
				r.With(mw.RequireRole(user.RoleClient, user.RoleAdmin)).
					Post("/new", projects.NewPostProject(log, storage))

				r.Route("/{projectId}", func(r chi.Router) {
					r.Get("/", projects.NewGetProject(log, storage))
					r.With(mw.RequireRole(user.RoleClient, user.RoleAdmin)).
						Put("/status", projects.NewPutProjectStatus(log, storage, publisher))
					r.With(mw.RequireRole(user.RoleClient, user.RoleAdmin)).
						Put("/winner", projects.NewSelectWinner(log, storage, publisher))
					r.Get("/milestones", projects.NewGetMilestones(log, storage))
					r.Get("/activity", projects.NewGetActivity(log, storage))

					r.Get("/bids", bids.NewGetProjectBids(log, storage))

					r.Post("/deliverables", deliverables.NewPostDeliverable(log, board))
					r.Get("/board", deliverables.NewGetBoard(log, board))
					r.Put("/board/move", deliverables.NewMoveDeliverable(log, board))

					r.Post("/messages", chat.NewPostMessage(log, storage, publisher))
					r.Get("/messages", chat.NewGetMessages(log, storage))
				})

				r.With(mw.RequireRole(user.RoleClient, user.RoleAdmin)).
					Post("/milestones/{milestoneId}/pay", projects.NewPayMilestone(log, storage, publisher))
			})

			r.Route("/bids", func(r chi.Router) {
				r.With(mw.RequireRole(user.RoleTalent)).
					Post("/new", bids.NewPostBid(log, storage))
				r.With(mw.RequireRole(user.RoleTalent)).
					Get("/my", bids.NewGetMyBids(log, storage))
			})

			r.Route("/deliverables/{deliverableId}", func(r chi.Router) {
				r.Put("/status", deliverables.NewPutDeliverableStatus(log, board))
				r.Post("/track/start", deliverables.NewStartTracking(log, board))
				r.Post("/track/stop", deliverables.NewStopTracking(log, board))
				r.Post("/files", deliverables.NewAttachFile(log, board))
				r.Get("/progress", deliverables.NewGetProgress(log, storage))
			})

			r.Post("/files/upload", files.NewUpload(log, uploader, storage))
		})
	})

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start the server", slog.String("error", err.Error()))
		}
	}()

	log.Info("starting server", slog.String("addr", cfg.Server.Addr))
	<-done

	stopHub()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "config.yaml"
}
