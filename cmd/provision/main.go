// Command provision creates the backing spreadsheet out of band and stores
// its identifier, the same first-run step the bot performs on /start.
package main

import (
	"context"
	"fmt"
	"os"

	"kopilka/internal/cli"
	"kopilka/internal/identity"
	"kopilka/internal/ledger/google"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	ids := identity.NewStore(cfg.StateFile)

	if rec, err := ids.Load(); err != nil {
		logger.Error("failed to read identity file", "error", err)
		os.Exit(1)
	} else if !rec.IsZero() {
		fmt.Println(rec.URL)
		return
	}

	client, err := google.New(ctx, google.Config{OwnerEmail: cfg.OwnerEmail})
	if err != nil {
		logger.Error("failed to initialize sheets client", "error", err)
		os.Exit(1)
	}

	id, url, err := client.Provision(ctx)
	if err != nil {
		logger.Error("provisioning failed", "error", err)
		os.Exit(1)
	}
	if err := ids.Save(identity.Identity{SpreadsheetID: id, URL: url}); err != nil {
		logger.Error("failed to save identity file", "error", err, "spreadsheet_id", id)
		os.Exit(1)
	}

	fmt.Println(url)
}
