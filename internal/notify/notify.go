package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/multierr"

	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/entities"
)

//go:generate mockgen -source=notify.go -package=notify -destination=notify_mock.go

// ErrNotConfigured is returned when no alert transport is configured.
var ErrNotConfigured = errors.New("no alert transport configured")

// ExpiringWithin is the horizon of the daily summary report.
const ExpiringWithin = 30

// Notifier delivers alerts to humans.
type Notifier interface {
	// SendExpiryAlert reports that the certificate of domain expires in days.
	SendExpiryAlert(ctx context.Context, domain string, days int) error
	// SendSummaryReport sends a digest of all monitored domains.
	SendSummaryReport(ctx context.Context, domains entities.Domains) error
}

// Disabled is a Notifier used when no transport is configured.
type Disabled struct{}

// SendExpiryAlert always fails with ErrNotConfigured.
func (Disabled) SendExpiryAlert(context.Context, string, int) error {
	return ErrNotConfigured
}

// SendSummaryReport always fails with ErrNotConfigured.
func (Disabled) SendSummaryReport(context.Context, entities.Domains) error {
	return ErrNotConfigured
}

// Multi delivers through every transport. A send succeeds only when all
// transports succeed.
type Multi []Notifier

// SendExpiryAlert implements Notifier.
func (m Multi) SendExpiryAlert(ctx context.Context, domain string, days int) error {
	var err error
	for _, n := range m {
		err = multierr.Append(err, n.SendExpiryAlert(ctx, domain, days))
	}
	return err
}

// SendSummaryReport implements Notifier.
func (m Multi) SendSummaryReport(ctx context.Context, domains entities.Domains) error {
	var err error
	for _, n := range m {
		err = multierr.Append(err, n.SendSummaryReport(ctx, domains))
	}
	return err
}

// Summary is the data of a daily report.
type Summary struct {
	Total    int
	WithSSL  int
	Expiring []ExpiringDomain
}

// ExpiringDomain is a domain listed in the daily report.
type ExpiringDomain struct {
	Name string
	Days int
}

// Summarize builds a daily report, expiring domains ordered by days left.
func Summarize(domains entities.Domains) Summary {
	s := Summary{Total: len(domains)}
	for name, rec := range domains { //nolint:gocritic
		if !rec.HasSSL {
			continue
		}
		s.WithSSL++
		if days, ok := rec.Days(); ok && days <= ExpiringWithin {
			s.Expiring = append(s.Expiring, ExpiringDomain{Name: name, Days: days})
		}
	}

	sort.Slice(s.Expiring, func(i, j int) bool {
		if s.Expiring[i].Days != s.Expiring[j].Days {
			return s.Expiring[i].Days < s.Expiring[j].Days
		}
		return s.Expiring[i].Name < s.Expiring[j].Name
	})

	return s
}

func alertSubject(domain string, days int) string {
	return fmt.Sprintf("SSL alert - %s (%d days remaining)", domain, days)
}
