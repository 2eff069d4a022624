package domain

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/metrics"
)

// AlertTick runs the alert scan if the daily gate is due at the current
// time and reports whether it did.
func (e *Engine) AlertTick(ctx context.Context) bool {
	e.scanMu.Lock()
	defer e.scanMu.Unlock()

	now := e.clock.Now()

	e.mu.Lock()
	due := e.gate.Due(now)
	e.mu.Unlock()
	if !due {
		return false
	}

	sent := e.ScanAlerts(ctx)

	e.mu.Lock()
	e.gate.Done(now)
	date := e.gate.LastAlertDate()
	e.mu.Unlock()

	e.logger.Info("daily alert scan finished", zap.String("date", date), zap.Int("sent", sent))
	return true
}

// ScanAlerts sends an expiry alert for every domain with a valid
// certificate that crossed a not yet alerted threshold, in name order.
// A threshold is recorded only after its alert was delivered, so a
// failed alert is retried on the next scan. Returns alerts sent.
func (e *Engine) ScanAlerts(ctx context.Context) int {
	snapshot := e.ListDomains()

	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	sent := 0
	for _, name := range names {
		rec := snapshot[name]
		if !rec.HasSSL {
			continue
		}
		days, ok := rec.Days()
		if !ok {
			continue
		}

		e.mu.Lock()
		should := e.alerts.ShouldAlert(name, days)
		e.mu.Unlock()
		if !should {
			continue
		}

		if err := e.notifier.SendExpiryAlert(ctx, name, days); err != nil {
			e.metrics.Alerts.WithLabelValues(metrics.ResultFailed).Inc()
			e.logger.Error("failed to send expiry alert",
				zap.String("domain", name),
				zap.Int("days_remaining", days),
				zap.Error(err),
			)
			continue
		}

		e.mu.Lock()
		e.alerts.MarkAlerted(name, days)
		e.mu.Unlock()

		sent++
		e.metrics.Alerts.WithLabelValues(metrics.ResultSent).Inc()
		e.logger.Info("expiry alert sent", zap.String("domain", name), zap.Int("days_remaining", days))
	}

	if e.opts.Summary {
		if err := e.notifier.SendSummaryReport(ctx, snapshot); err != nil {
			e.logger.Error("failed to send summary report", zap.Error(err))
		}
	}

	return sent
}
