package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/routerbot/routerbot/pkg/audit"
	"github.com/routerbot/routerbot/pkg/auth"
	"github.com/routerbot/routerbot/pkg/backup"
	"github.com/routerbot/routerbot/pkg/command"
	"github.com/routerbot/routerbot/pkg/config"
	"github.com/routerbot/routerbot/pkg/inventory"
	"github.com/routerbot/routerbot/pkg/metrics"
	"github.com/routerbot/routerbot/pkg/monitor"
	"github.com/routerbot/routerbot/pkg/restconf"
	"github.com/routerbot/routerbot/pkg/util"
)

// app holds the long-lived collaborators built from the configuration.
// Optional subsystems are nil when not configured.
type app struct {
	cfg        *config.Config
	metrics    *metrics.Metrics
	inventory  *inventory.Store
	audit      audit.Logger
	checker    *auth.Checker
	dispatcher *command.Dispatcher
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, metrics: metrics.New()}

	if cfg.RedisAddr != "" {
		store, err := inventory.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		a.inventory = store
	} else {
		util.Info("router inventory disabled (REDIS_ADDR not set)")
	}

	logger, err := audit.Open(cfg.AuditLog, cfg.AuditDSN)
	switch {
	case errors.Is(err, util.ErrNotConfigured):
		util.Info("audit log disabled (AUDIT_LOG and AUDIT_DSN not set)")
	case err != nil:
		a.close()
		return nil, fmt.Errorf("opening audit log: %w", err)
	default:
		a.audit = logger
	}

	var policy *auth.Policy
	if cfg.AuthPolicy != "" {
		policy, err = auth.LoadPolicy(cfg.AuthPolicy)
		if err != nil {
			a.close()
			return nil, err
		}
	} else {
		util.Warnf("no AUTH_POLICY set: every user may run every command")
	}
	a.checker = auth.NewChecker(policy)

	if !cfg.HasDefaultRouter() {
		util.Info("no default router: device commands need router:<name>")
	}

	deps := command.Deps{
		DefaultEndpoint: cfg.Endpoint(),
		Dial:            command.RESTCONFDialer(restconf.WithObserver(a.metrics)),
		Backups:         backup.NewRunner(cfg.BackupDir, cfg.CommandTimeout),
		SSHPort:         cfg.RouterSSHPort,
		Checker:         a.checker,
		Observer:        a.metrics,
		Timeout:         cfg.CommandTimeout,
	}
	// Assigned separately so a nil store stays a nil interface.
	if a.inventory != nil {
		deps.Inventory = a.inventory
	}
	if a.audit != nil {
		deps.Audit = a.audit
	}
	a.dispatcher = command.NewDispatcher(deps)
	return a, nil
}

// monitorWorker returns the inventory monitor, or nil without Redis.
func (a *app) monitorWorker() *monitor.Worker {
	if a.inventory == nil {
		return nil
	}
	dial := monitor.RESTCONFDialer(restconf.WithObserver(a.metrics))
	checker := monitor.NewChecker(a.cfg.Endpoint(), dial)
	return monitor.NewWorker(a.inventory, checker, a.cfg.MonitorInterval)
}

func (a *app) close() {
	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			util.Warnf("closing audit log: %v", err)
		}
	}
	if a.inventory != nil {
		if err := a.inventory.Close(); err != nil {
			util.Warnf("closing redis: %v", err)
		}
	}
}
