package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neilboltonAD/marketplace-admin-api/internal/console"
	"github.com/neilboltonAD/marketplace-admin-api/internal/repository"
	"github.com/neilboltonAD/marketplace-admin-api/internal/seed"
	"github.com/neilboltonAD/marketplace-admin-api/internal/service"
	"github.com/neilboltonAD/marketplace-admin-api/pkg/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	seedFile := flag.String("seed", "", "TOML seed file (optional)")
	operator := flag.String("operator", "", "operator recorded on applied updates (optional)")
	poll := flag.Duration("poll", time.Second, "refresh interval")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pricesync-console: %v\n", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	path := cfg.PriceSync.SeedFile
	if *seedFile != "" {
		path = *seedFile
	}
	records := seed.Records(time.Now().UTC())
	if path != "" {
		if records, err = seed.LoadFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "pricesync-console: %v\n", err)
			return 1
		}
	}
	repo := repository.NewPriceUpdateRepository()
	if err := repo.Seed(ctx, records); err != nil {
		fmt.Fprintf(os.Stderr, "pricesync-console: %v\n", err)
		return 1
	}

	// the terminal is owned by the UI, so the service stays silent
	svc := service.NewPriceSyncService(repo, nil,
		service.WithPriceSyncResolveDelay(cfg.PriceSync.ResolveDelay),
		service.WithPriceSyncPageSize(cfg.PriceSync.PageSize),
		service.WithPriceSyncDefaultOperator(cfg.PriceSync.DefaultOperator),
	)
	svc.Start(ctx)
	defer svc.Stop()

	opts := console.Options{
		Context:  ctx,
		Backend:  svc,
		Operator: svc.Operator(*operator),
		PollTick: *poll,
	}
	if err := console.Run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "pricesync-console: %v\n", err)
		return 1
	}
	return 0
}
