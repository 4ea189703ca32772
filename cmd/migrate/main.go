package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/sijangmap/marketmap-backend/pkg/config"
	"github.com/sijangmap/marketmap-backend/pkg/db"
	"github.com/sijangmap/marketmap-backend/pkg/logger"
	"github.com/sijangmap/marketmap-backend/pkg/migrate"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|up-to|down|status|version")
	target := flag.Int64("to", 0, "target version for -cmd=up-to")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx = logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	logg.Info(ctx, "migrate ready")

	switch *cmd {
	case "up":
		if err := migrate.Up(ctx, sqlDB); err != nil {
			fatal("goose up failed", err)
		}

	case "up-to":
		if *target <= 0 {
			fmt.Fprintln(os.Stderr, "missing -to version for up-to")
			os.Exit(1)
		}
		if err := migrate.UpTo(ctx, sqlDB, *target); err != nil {
			fatal("goose up-to failed", err)
		}

	case "down":
		if err := migrate.Down(ctx, sqlDB); err != nil {
			fatal("goose down failed", err)
		}

	case "status":
		statuses, err := migrate.Status(ctx, sqlDB)
		if err != nil {
			fatal("goose status failed", err)
		}
		for _, st := range statuses {
			fmt.Printf("%-10s %s\n", st.State, st.Source.Path)
		}

	case "version":
		version, err := migrate.Version(ctx, sqlDB)
		if err != nil {
			fatal("goose version failed", err)
		}
		fmt.Println("schema version:", version)

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", *cmd)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err != nil {
		logg.Error(ctx, "failed to bootstrap "+name, err)
		os.Exit(1)
	}
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
