package main

import (
	"context"
	"log"
	"os"

	"github.com/clipboardhistoryio/companion/internal/buildinfo"
	"github.com/clipboardhistoryio/companion/internal/client/cli"
	"github.com/clipboardhistoryio/companion/internal/client/config"
	"github.com/joho/godotenv"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
