package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/finbotdev/finbot/internal/api/handlers"
	"github.com/finbotdev/finbot/internal/api/middleware"
	"github.com/finbotdev/finbot/internal/bot"
	"github.com/finbotdev/finbot/internal/config"
	"github.com/finbotdev/finbot/internal/llm"
	"github.com/finbotdev/finbot/internal/logger"
	"github.com/finbotdev/finbot/internal/memory"
	"github.com/finbotdev/finbot/internal/store"
	"github.com/finbotdev/finbot/internal/tools"
)

func main() {
	// .env is optional; real environment variables always win.
	_ = godotenv.Load()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db_path", cfg.DBPath).Msg("Failed to open database")
	}
	defer st.Close()

	model, err := llm.NewClient(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.ModelTimeout, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create model client")
	}

	exporter, err := tools.NewExporter(cfg.ExportDir)
	if err != nil {
		log.Fatal().Err(err).Str("export_dir", cfg.ExportDir).Msg("Failed to create exporter")
	}

	var searcher tools.PriceSearcher
	if cfg.SearchURL != "" {
		searcher = tools.NewHTTPSearcher(cfg.SearchURL, cfg.SearchTimeout)
	} else {
		log.Warn().Msg("No search endpoint configured - price search will use static estimates")
	}

	core := bot.New(model, st, memory.NewStore(cfg.HistoryWindow), exporter, searcher, log)

	chatHandler := handlers.NewChatHandler(core, log)
	remindersHandler := handlers.NewRemindersHandler(st, log)

	router := mux.NewRouter()
	router.HandleFunc("/api/chat", chatHandler.Chat).Methods(http.MethodPost)
	router.HandleFunc("/api/reminders", remindersHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(router),
			),
		),
	)

	// Write timeout covers the slowest path: two model hops plus a search.
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
