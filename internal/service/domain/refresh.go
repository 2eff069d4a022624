package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/entities"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/metrics"
)

// Lookup returns the cached record of domain or probes it when the cache
// has nothing fresh. The second value is false when the probe did not
// finish within the task timeout or ctx was cancelled.
func (e *Engine) Lookup(ctx context.Context, domain string) (entities.DomainRecord, bool) {
	e.mu.Lock()
	rec, ok := e.cache.Get(domain)
	e.mu.Unlock()
	if ok {
		e.metrics.Probes.WithLabelValues(metrics.ResultCached).Inc()
		return rec, true
	}

	rec, ok = e.probe(ctx, domain)
	if !ok {
		return entities.DomainRecord{}, false
	}

	e.mu.Lock()
	e.cache.Put(domain, rec)
	e.mu.Unlock()

	return rec, true
}

// probe runs the prober bounded by the task timeout. A probe that
// overruns is cancelled and abandoned: its result, if it ever comes,
// is dropped.
func (e *Engine) probe(ctx context.Context, domain string) (entities.DomainRecord, bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := e.clock.Now()
	done := make(chan entities.DomainRecord, 1)
	go func() {
		done <- e.prober.Probe(ctx, domain)
	}()

	timer := e.clock.NewTimer(e.opts.TaskTimeout)
	defer timer.Stop()

	select {
	case rec := <-done:
		e.metrics.ProbeDuration.Observe(e.clock.Since(start).Seconds())
		result := metrics.ResultOnline
		if !rec.HasSSL {
			result = metrics.ResultOffline
		}
		e.metrics.Probes.WithLabelValues(result).Inc()
		return rec, true
	case <-timer.Chan():
		e.metrics.Probes.WithLabelValues(metrics.ResultTimeout).Inc()
		e.logger.Warn("certificate probe abandoned",
			zap.String("domain", domain),
			zap.Duration("timeout", e.opts.TaskTimeout),
		)
		return entities.DomainRecord{}, false
	case <-ctx.Done():
		e.metrics.Probes.WithLabelValues(metrics.ResultAbandoned).Inc()
		return entities.DomainRecord{}, false
	}
}

// RefreshAll checks every monitored domain with at most Workers probes in
// flight, then persists the table once. Domains removed while the cycle
// runs are not brought back. Only one cycle runs at a time.
func (e *Engine) RefreshAll(ctx context.Context) {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()

	start := e.clock.Now()
	logger := e.logger.With(zap.String("cycle_id", uuid.NewString()))

	names := e.names()
	logger.Info("refresh cycle started", zap.Int("domains", len(names)))

	p := pool.New().WithMaxGoroutines(e.opts.Workers)
	for _, name := range names {
		p.Go(func() {
			e.refreshOne(ctx, logger, name)
		})
	}
	p.Wait()

	e.persist(ctx)

	elapsed := e.clock.Since(start)
	e.metrics.RefreshDuration.Observe(elapsed.Seconds())
	logger.Info("refresh cycle finished", zap.Int("domains", len(names)), zap.Duration("elapsed", elapsed))
}

func (e *Engine) refreshOne(ctx context.Context, logger *zap.Logger, name string) {
	rec, ok := e.Lookup(ctx, name)

	e.mu.Lock()
	defer e.mu.Unlock()

	prior, exists := e.domains[name]
	if !exists {
		return
	}

	if ok {
		e.domains[name] = prior.Merge(rec)
		return
	}

	if ctx.Err() != nil {
		return
	}

	logger.Warn("domain check timed out", zap.String("domain", name), zap.Bool("had_result", prior.Checked()))
	if prior.Checked() {
		return
	}
	e.domains[name] = prior.Merge(e.timeoutRecord())
}
