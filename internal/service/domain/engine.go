package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/entities"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/metrics"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/notify"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/service/alert"
	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/storage"
)

// Engine defaults.
const (
	DefaultWorkers     = 10
	DefaultTaskTimeout = 10 * time.Second
)

// testAlertDomain is the domain named in test notifications.
const testAlertDomain = "test.example"

// ErrDomainNotFound is returned for operations on unknown domains.
var ErrDomainNotFound = errors.New("domain not found")

// Options tunes Engine. Zero values are replaced by defaults.
type Options struct {
	// Workers is the number of probes in flight at most.
	Workers int
	// TaskTimeout bounds a single probe task on top of the probe's
	// own socket timeouts.
	TaskTimeout time.Duration
	CacheTTL    time.Duration
	Thresholds  []int
	// Summary enables the daily digest sent after each alert scan.
	Summary bool
	Gate    *alert.Gate
	Clock   clockwork.Clock
	Metrics *metrics.Metrics
}

func (o *Options) setDefaults() {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.TaskTimeout <= 0 {
		o.TaskTimeout = DefaultTaskTimeout
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Gate == nil {
		o.Gate = alert.NewGate(time.Local, 9, 0, time.Hour)
	}
	if o.Metrics == nil {
		o.Metrics = metrics.New()
	}
}

// Engine owns the table of monitored domains together with the probe
// cache, the alert ledger and the daily alert gate. All of them are
// guarded by mu; probes and notifications run outside of it.
type Engine struct {
	store    storage.Store
	notifier notify.Notifier
	prober   Prober
	logger   *zap.Logger
	metrics  *metrics.Metrics
	clock    clockwork.Clock
	opts     Options

	cycleMu   sync.Mutex
	scanMu    sync.Mutex
	persistMu sync.Mutex

	mu      sync.Mutex
	domains entities.Domains
	cache   *Cache
	alerts  *alert.Tracker
	gate    *alert.Gate
}

// New returns Engine with an empty table. Call Load to restore
// the persisted one.
func New(
	store storage.Store,
	notifier notify.Notifier,
	prober Prober,
	logger *zap.Logger,
	opts Options,
) *Engine {
	opts.setDefaults()

	return &Engine{
		store:    store,
		notifier: notifier,
		prober:   prober,
		logger:   logger,
		metrics:  opts.Metrics,
		clock:    opts.Clock,
		opts:     opts,
		domains:  make(entities.Domains),
		cache:    NewCache(opts.Clock, opts.CacheTTL),
		alerts:   alert.NewTracker(opts.Thresholds),
		gate:     opts.Gate,
	}
}

// Load restores the persisted table and adds seeds that are not in it yet.
// Invalid seeds are logged and skipped.
func (e *Engine) Load(ctx context.Context, seeds []string) error {
	domains, err := e.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load domains: %w", err)
	}
	if domains == nil {
		domains = make(entities.Domains)
	}

	added := 0
	for _, raw := range seeds {
		name, err := NormalizeName(raw)
		if err != nil {
			e.logger.Warn("skipping configured domain", zap.String("domain", raw), zap.Error(err))
			continue
		}
		if _, ok := domains[name]; !ok {
			domains[name] = entities.DomainRecord{}
			added++
		}
	}

	e.mu.Lock()
	e.domains = domains
	e.metrics.Domains.Set(float64(len(domains)))
	e.mu.Unlock()

	e.logger.Info("domains loaded", zap.Int("count", len(domains)), zap.Int("seeded", added))
	if added > 0 {
		e.persist(ctx)
	}

	return nil
}

// AddDomain probes name right away, bypassing the cache, stores the
// result and persists the table. Re-adding a known domain keeps its note.
func (e *Engine) AddDomain(ctx context.Context, raw string) (entities.DomainRecord, error) {
	name, err := NormalizeName(raw)
	if err != nil {
		return entities.DomainRecord{}, err
	}

	rec, ok := e.probe(ctx, name)
	if !ok {
		rec = e.timeoutRecord()
	}

	e.mu.Lock()
	if ok {
		e.cache.Put(name, rec)
	}
	merged := e.domains[name].Merge(rec)
	e.domains[name] = merged
	e.metrics.Domains.Set(float64(len(e.domains)))
	e.mu.Unlock()

	e.logger.Info("domain added",
		zap.String("domain", name),
		zap.String("status", string(merged.Status)),
	)
	e.persist(ctx)

	return merged.Clone(), nil
}

// RemoveDomain forgets everything about name and persists the table.
// Removing an unknown domain is a no-op.
func (e *Engine) RemoveDomain(ctx context.Context, raw string) error {
	name, err := NormalizeName(raw)
	if err != nil {
		return err
	}

	e.mu.Lock()
	_, ok := e.domains[name]
	if ok {
		delete(e.domains, name)
		e.cache.Delete(name)
		e.alerts.Forget(name)
		e.metrics.Domains.Set(float64(len(e.domains)))
	}
	e.mu.Unlock()

	if !ok {
		return nil
	}

	e.logger.Info("domain removed", zap.String("domain", name))
	e.persist(ctx)

	return nil
}

// ListDomains returns a copy of the table.
func (e *Engine) ListDomains() entities.Domains {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.domains.Clone()
}

// SetNote replaces the note of a known domain and persists the table.
func (e *Engine) SetNote(ctx context.Context, raw, note string) error {
	name, err := NormalizeName(raw)
	if err != nil {
		return err
	}

	e.mu.Lock()
	rec, ok := e.domains[name]
	if ok {
		rec.Note = note
		e.domains[name] = rec
	}
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrDomainNotFound, name)
	}

	e.persist(ctx)
	return nil
}

// SendTestAlert sends a sample expiry alert through the notifier.
func (e *Engine) SendTestAlert(ctx context.Context) error {
	if err := e.notifier.SendExpiryAlert(ctx, testAlertDomain, 10); err != nil {
		return fmt.Errorf("failed to send test alert: %w", err)
	}
	return nil
}

// persist saves the current table. Saves are serialized and each takes
// its snapshot after the previous one finished, so the latest table is
// always written last. Failures are logged: the in-memory table stays
// authoritative and the next save reconciles.
func (e *Engine) persist(ctx context.Context) {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	snapshot := e.ListDomains()
	if err := e.store.Save(ctx, snapshot); err != nil {
		e.metrics.PersistenceFailures.Inc()
		e.logger.Error("failed to persist domains", zap.Int("count", len(snapshot)), zap.Error(err))
	}
}

func (e *Engine) names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	names := make([]string, 0, len(e.domains))
	for name := range e.domains {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (e *Engine) timeoutRecord() entities.DomainRecord {
	return entities.DomainRecord{
		Status:       entities.StatusError,
		ErrorMessage: fmt.Sprintf("certificate check did not finish within %s", e.opts.TaskTimeout),
		LastCheck:    e.clock.Now().UTC(),
	}
}
