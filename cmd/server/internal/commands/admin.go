package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"booksummarizer/internal/database"
	"booksummarizer/internal/repository"
	"booksummarizer/internal/services"
)

type CreateAdminCmd struct {
	Username string `help:"Administrator username." env:"ADMIN_USERNAME" required:""`
	Email    string `help:"Administrator email." env:"ADMIN_EMAIL" required:""`
	Password string `help:"Administrator password." env:"ADMIN_PASSWORD" required:""`
}

func (c *CreateAdminCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, _ := setup(globals)

	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		return err
	}

	credentials, err := services.NewCredentialStore(repository.NewUserRepo(pool), cfg.BcryptCost)
	if err != nil {
		return err
	}

	return ensureAdmin(ctx, credentials, c.Username, c.Email, c.Password)
}

func ensureAdmin(ctx context.Context, credentials *services.CredentialStore, username, email, password string) error {
	admin, created, err := credentials.EnsureAdmin(ctx, username, email, password)
	if err != nil {
		var dup *services.DuplicateError
		if errors.As(err, &dup) {
			return fmt.Errorf("cannot create admin %q: %s", username, dup.Message)
		}
		return err
	}

	if created {
		log.Info().Str("username", admin.Username).Str("user_id", admin.ID.String()).Msg("Administrator created")
	} else {
		log.Info().Str("username", admin.Username).Msg("Administrator already exists")
	}
	return nil
}
