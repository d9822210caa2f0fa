package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/posts"
	"github.com/mrlokans/bookshelf/internal/scheduler"
)

// PurgeOrphansCommand removes posts and books whose owner no longer exists.
type PurgeOrphansCommand struct {
	cfg *config.Config
}

func NewPurgeOrphansCommand(cfg *config.Config) *PurgeOrphansCommand {
	return &PurgeOrphansCommand{cfg: cfg}
}

func (cmd *PurgeOrphansCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("purge-orphans", flag.ContinueOnError)
	fs.StringVar(&cmd.cfg.Database.Path, "db", cmd.cfg.Database.Path, "Path to the SQLite database (ignored for postgres)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s purge-orphans [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete posts and books left behind by deleted users.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *PurgeOrphansCommand) Run() error {
	db, err := database.NewDatabase(cmd.cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	removed := scheduler.SweepOrphans(context.Background(),
		posts.NewRepository(db.DB),
		books.NewRepository(db.DB),
	)

	fmt.Printf("Removed %d orphaned records\n", removed)
	return nil
}
