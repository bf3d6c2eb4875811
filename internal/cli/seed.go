package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"truthschool-funnel/internal/config"
	"truthschool-funnel/internal/infra/postgres"
	"truthschool-funnel/internal/quiz"
)

// NewSeedCmd stores the built-in questionnaire in Postgres, replacing edits.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Upsert the built-in career feedback questionnaire",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			if err := runMigrationsWithConfig(cmd.Context(), cfg, log); err != nil {
				return err
			}

			db, err := openBunDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			q := quiz.CareerFeedback()
			if err := postgres.UpsertQuestionnaire(cmd.Context(), db, q); err != nil {
				return err
			}
			log.Info().Str("questionnaire", q.ID).Int("questions", q.Len()).Msg("questionnaire seeded")
			return nil
		},
	}
}

// ensureBuiltinQuestionnaire lets `start` serve a fresh database without a
// separate seed step. Existing content is left alone.
func ensureBuiltinQuestionnaire(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	db, err := openBunDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	q := quiz.CareerFeedback()
	created, err := postgres.EnsureQuestionnaire(ctx, db, q)
	if err != nil {
		return err
	}
	if created {
		log.Info().Str("questionnaire", q.ID).Msg("built-in questionnaire stored")
	}
	return nil
}
