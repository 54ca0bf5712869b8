package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"booksummarizer/internal/database"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, _ := setup(globals)

	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		return err
	}

	log.Info().Msg("Database migrations applied")
	return nil
}
