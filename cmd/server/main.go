package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"

	"booksummarizer/cmd/server/internal/commands"
	"booksummarizer/internal/config"
)

var (
	version = "dev"
	cli     struct {
		Dev         bool                    `help:"Force development logging."`
		Version     kong.VersionFlag        `help:"Print version and exit."`
		Serve       commands.ServeCmd       `cmd:"" default:"1" help:"Run the HTTP API (default)."`
		Migrate     commands.MigrateCmd     `cmd:"" help:"Apply pending database migrations and exit."`
		CreateAdmin commands.CreateAdminCmd `cmd:"" name:"create-admin" help:"Create the administrator account if it does not exist."`
	}
)

// newParser loads .env first so env-backed flags see its values.
func newParser(ctx context.Context) (*kong.Kong, error) {
	config.LoadDotEnv()
	return kong.New(&cli,
		kong.Name("booksummarizer"),
		kong.Description("Session-authenticated book summarizer API."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
}

func main() {
	ctx := context.Background()
	parser, err := newParser(ctx)
	if err != nil {
		panic(err)
	}
	cmd, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	err = cmd.Run(&commands.Globals{Dev: cli.Dev, Version: version})
	cmd.FatalIfErrorf(err)
}
