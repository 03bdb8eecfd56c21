package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/routerbot/routerbot/pkg/discord"
	"github.com/routerbot/routerbot/pkg/metrics"
	"github.com/routerbot/routerbot/pkg/util"
	"github.com/routerbot/routerbot/pkg/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Discord bot",
	Long: `Run the Discord bot until interrupted.

Alongside the bot, serve starts the Prometheus endpoint when METRICS_ADDR is
set and the router monitor when REDIS_ADDR is set. A failure of any of them
stops all three.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateBot(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		bot, err := discord.New(cfg.DiscordToken, cfg.DevGuildID, a.dispatcher)
		if err != nil {
			return err
		}

		util.Infof("routerbot %s starting", version.Version)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return bot.Run(gctx) })
		if cfg.MetricsAddr != "" {
			srv := metrics.NewServer(cfg.MetricsAddr, a.metrics)
			g.Go(func() error { return srv.Run(gctx) })
		}
		if w := a.monitorWorker(); w != nil {
			g.Go(func() error { return w.Run(gctx) })
		}
		return g.Wait()
	},
}
