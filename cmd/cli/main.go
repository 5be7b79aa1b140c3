package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/avolkovs/surveydesk/internal/buildinfo"
	"github.com/avolkovs/surveydesk/internal/client/cli"
	"github.com/avolkovs/surveydesk/internal/client/config"
	"github.com/avolkovs/surveydesk/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app := cli.NewApp(cfg, log)
	app.Run(ctx)
}
