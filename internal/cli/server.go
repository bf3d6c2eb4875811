package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"truthschool-funnel/internal/apiclient"
	"truthschool-funnel/internal/app"
	"truthschool-funnel/internal/config"
	"truthschool-funnel/internal/countdown"
	"truthschool-funnel/internal/flow"
	"truthschool-funnel/internal/infra/memory"
	pgloader "truthschool-funnel/internal/infra/postgres"
	redisstore "truthschool-funnel/internal/infra/redis"
	"truthschool-funnel/internal/logging"
	"truthschool-funnel/internal/quiz"
	transport "truthschool-funnel/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the funnel server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	return logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	questionnaireID := cfg.Questionnaire.ID
	if questionnaireID == "" {
		questionnaireID = quiz.CareerFeedbackID
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
		if questionnaireID == quiz.CareerFeedbackID {
			if err := ensureBuiltinQuestionnaire(ctx, cfg, log); err != nil {
				return err
			}
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	visitTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuestionnaireLoader = memory.NewStaticQuestionnaireLoader(quiz.CareerFeedback())
	if pool != nil {
		loader = pgloader.NewQuestionnaireLoader(pool)
	}

	questionnaireTTL := config.TTLDuration(cfg.Questionnaire.TTL, 10*time.Minute)
	var questionnaires app.QuestionnaireRepository
	if redisClient != nil {
		questionnaires = redisstore.NewQuestionnaireRepository(redisClient, loader, questionnaireTTL)
	} else {
		questionnaires = memory.NewQuestionnaireRepository(loader, questionnaireTTL)
	}

	var visits app.VisitRepository
	if redisClient != nil {
		visits = redisstore.NewVisitStore(redisClient, visitTTL)
	} else {
		visits = memory.NewVisitStore()
	}

	client := apiclient.New(apiclient.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: config.TTLDuration(cfg.API.Timeout, apiclient.DefaultTimeout),
	}, apiclient.WithLogger(log))

	countdownFrom := cfg.Funnel.CountdownSeconds
	if countdownFrom <= 0 {
		countdownFrom = countdown.DefaultFrom
	}
	service := app.NewFunnelService(visits, questionnaires, client, app.Config{
		QuestionnaireID: questionnaireID,
		CountdownFrom:   countdownFrom,
	}, log, flow.WithTickInterval(config.TTLDuration(cfg.Funnel.TickInterval, countdown.DefaultInterval)))

	// fail fast on a missing or broken questionnaire
	if _, err := questionnaires.GetQuestionnaire(ctx, questionnaireID); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           transport.NewRouter(service, client, log),
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Str("api", cfg.API.BaseURL).Msg("starting funnel service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
