package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"publishing-backend/internal/config"
	"publishing-backend/internal/infrastructure/database"
	"publishing-backend/migrations"
	"publishing-backend/pkg/logger"
)

type cliCtx struct {
	context.Context
	migrator *database.Migrator
}

type cli struct {
	Up     UpCmd     `cmd:"" help:"Apply all pending migrations"`
	Status StatusCmd `cmd:"" help:"Show applied and pending migrations"`

	Env     string        `help:"Path to .env file" default:".env"`
	Timeout time.Duration `help:"Database connect timeout" default:"30s"`
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.UsageOnError(),
		kong.Name("migrate"),
		kong.Description("Apply the embedded publishing-backend schema"),
	)

	_ = godotenv.Load(c.Env)
	logger.Init(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

	dbConfig, err := config.LoadDatabaseConfig()
	ctx.FatalIfErrorf(err)

	db := database.NewPostgresDB(dbConfig)

	connectCtx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	err = db.Connect(connectCtx)
	cancel()
	ctx.FatalIfErrorf(err)
	defer db.Close()

	err = ctx.Run(&cliCtx{
		Context:  context.Background(),
		migrator: database.NewMigrator(db.Pool, migrations.FS),
	})
	ctx.FatalIfErrorf(err)
}

type UpCmd struct{}

func (u *UpCmd) Run(ctx *cliCtx) error {
	applied, err := ctx.migrator.Up(ctx)
	if err != nil {
		return err
	}

	if len(applied) == 0 {
		fmt.Println("Schema is up to date")
		return nil
	}
	fmt.Printf("Applied %d migration(s): %v\n", len(applied), applied)
	return nil
}

type StatusCmd struct{}

func (s *StatusCmd) Run(ctx *cliCtx) error {
	statuses, err := ctx.migrator.Status(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED AT")
	for _, st := range statuses {
		appliedAt := "pending"
		if st.AppliedAt != nil {
			appliedAt = st.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", st.Version, st.Name, appliedAt)
	}
	return w.Flush()
}
