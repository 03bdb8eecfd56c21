package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/routerbot/routerbot/pkg/inventory"
	"github.com/routerbot/routerbot/pkg/util"
)

// maxConcurrentProbes bounds in-flight probes per pass.
const maxConcurrentProbes = 8

// Store is the part of the inventory the worker reads and updates.
type Store interface {
	All(ctx context.Context) ([]inventory.Profile, error)
	SetStatus(ctx context.Context, guild, name, status, reason string, when time.Time) error
}

// Report summarizes one pass over the inventory
type Report struct {
	Timestamp time.Time     `json:"timestamp"`
	Overall   Status        `json:"overall"`
	Results   []Result      `json:"results"`
	Duration  time.Duration `json:"duration"`
}

// Count returns how many results have the given status.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Worker periodically probes every inventory profile
type Worker struct {
	store    Store
	checker  *Checker
	interval time.Duration

	mu   sync.Mutex
	last map[string]Status
}

// NewWorker creates a worker
func NewWorker(store Store, checker *Checker, interval time.Duration) *Worker {
	return &Worker{
		store:    store,
		checker:  checker,
		interval: interval,
		last:     make(map[string]Status),
	}
}

// Run probes immediately and then every interval until ctx is cancelled.
// Pass failures are logged, not returned.
func (w *Worker) Run(ctx context.Context) error {
	util.Infof("monitor: probing routers every %s", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			util.Warnf("monitor: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce probes every profile once, stores each status and returns the
// report in inventory order.
func (w *Worker) RunOnce(ctx context.Context) (*Report, error) {
	start := time.Now()
	profiles, err := w.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading inventory: %w", err)
	}

	report := &Report{
		Timestamp: start,
		Overall:   StatusOnline,
		Results:   make([]Result, len(profiles)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProbes)
	for i, p := range profiles {
		i, p := i, p
		g.Go(func() error {
			res := w.checker.Check(gctx, p)
			report.Results[i] = res
			if err := w.store.SetStatus(gctx, p.GuildID, p.Name, string(res.Status), failureReason(res), res.Timestamp); err != nil {
				util.WithDevice(p.Name).Warnf("monitor: storing status: %v", err)
			}
			w.logTransition(res)
			return nil
		})
	}
	_ = g.Wait()

	if len(profiles) == 0 {
		report.Overall = StatusUnknown
	}
	// Worst status wins
	for _, res := range report.Results {
		if res.Status.severity() > report.Overall.severity() {
			report.Overall = res.Status
		}
	}
	report.Duration = time.Since(start)
	return report, nil
}

func failureReason(res Result) string {
	if res.Status == StatusOnline {
		return ""
	}
	return res.Message
}

func (w *Worker) logTransition(res Result) {
	key := res.GuildID + "|" + res.Router
	w.mu.Lock()
	prev, seen := w.last[key]
	w.last[key] = res.Status
	w.mu.Unlock()

	log := util.WithDevice(res.Router).WithField("host", res.Host)
	switch {
	case res.Status == StatusOnline && seen && prev != StatusOnline:
		log.Infof("router back online (was %s)", prev)
	case res.Status != StatusOnline && (!seen || prev == StatusOnline):
		log.Warnf("router %s: %s", res.Status, res.Message)
	default:
		log.Debugf("router %s", res.Status)
	}
}
