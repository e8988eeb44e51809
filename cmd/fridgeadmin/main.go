// Command fridgeadmin runs maintenance jobs against the configured store.
//
//	fridgeadmin purge-shared [-dry-run]
//	fridgeadmin purge-expired-invites
//	fridgeadmin check-expiring
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/app"
	"github.com/iliyamo/fridge-share/internal/config"
	"github.com/iliyamo/fridge-share/internal/logging"
	"github.com/iliyamo/fridge-share/internal/mail"
	"github.com/iliyamo/fridge-share/internal/service"
)

const usage = `usage: fridgeadmin <command> [flags]

commands:
  purge-shared [-dry-run]   delete fridges no profile points at, with their items, categories and invites
  purge-expired-invites     delete invites past expiry plus INVITE_RETENTION
  check-expiring            emit expiring-item notifications for today
`

func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	log, err := logging.New(logging.ConfigFromEnv())
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	backend, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("open stores", zap.Error(err))
	}
	defer func() { _ = backend.Close() }()

	svc := service.New(backend.Stores, mail.LogSender{Log: log}, mail.LinksFromConfig(config.LoadMailConfig()),
		app.ServiceConfig(cfg), service.Options{Logger: log})

	if err := run(ctx, svc.Admin, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		log.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		os.Exit(1)
	}
}

// run executes one command and prints its result as JSON.
func run(ctx context.Context, admin *service.Admin, cmd string, args []string, out io.Writer) error {
	var result any
	switch cmd {
	case "purge-shared":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		dryRun := fs.Bool("dry-run", false, "report what would be deleted without deleting")
		if err := fs.Parse(args); err != nil {
			return err
		}
		report, err := admin.PurgeSharedFridges(ctx, *dryRun)
		if err != nil {
			return err
		}
		result = report
	case "purge-expired-invites":
		n, err := admin.PurgeExpiredInvites(ctx)
		if err != nil {
			return err
		}
		result = map[string]int64{"deleted": n}
	case "check-expiring":
		n, err := admin.CheckExpiring(ctx)
		if err != nil {
			return err
		}
		result = map[string]int{"notified": n}
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
