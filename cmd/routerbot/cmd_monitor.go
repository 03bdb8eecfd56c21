package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/routerbot/routerbot/pkg/cli"
	"github.com/routerbot/routerbot/pkg/monitor"
	"github.com/routerbot/routerbot/pkg/util"
)

var monitorOnce bool

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Probe inventory routers",
	Long: `Probe every inventory router by reading its hostname and store the
resulting status (online, offline, auth_failed, error, invalid).

Without --once the probe repeats every MONITOR_INTERVAL until interrupted.
Requires REDIS_ADDR.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		w := a.monitorWorker()
		if w == nil {
			return util.NewNotConfiguredError("router inventory", "set REDIS_ADDR")
		}
		if !monitorOnce {
			return w.Run(ctx)
		}

		report, err := w.RunOnce(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(report)
		}
		printReport(report)
		return nil
	},
}

func printReport(report *monitor.Report) {
	if len(report.Results) == 0 {
		fmt.Println("No routers in the inventory")
		return
	}
	t := cli.NewTable("GUILD", "ROUTER", "HOST", "STATUS", "MESSAGE", "DURATION")
	for _, r := range report.Results {
		t.Row(r.GuildID, r.Router, r.Host, formatStatus(r.Status), r.Message, r.Duration.String())
	}
	t.Flush()
	fmt.Printf("\nOverall: %s (%d/%d online, %s)\n",
		formatStatus(report.Overall), report.Count(monitor.StatusOnline), len(report.Results), report.Duration)
}

func formatStatus(status monitor.Status) string {
	switch status {
	case monitor.StatusOnline:
		return cli.Green("online")
	case monitor.StatusAuthFailed, monitor.StatusInvalid:
		return cli.Yellow(string(status))
	case monitor.StatusOffline, monitor.StatusError:
		return cli.Red(string(status))
	default:
		return string(status)
	}
}

func init() {
	monitorCmd.Flags().BoolVar(&monitorOnce, "once", false, "Probe once, print a report and exit")
	addOutputFlags(monitorCmd)
}
