package domain

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/entities"
)

const day = 24 * time.Hour

// ErrKind classifies a failed probe.
type ErrKind string

// Probe failure kinds.
const (
	KindNetwork ErrKind = "network"
	KindTimeout ErrKind = "timeout"
	KindTLS     ErrKind = "tls"
)

// ProbeError is a failed certificate probe.
type ProbeError struct {
	Kind  ErrKind
	Stage string
	Err   error
}

func (e *ProbeError) Error() string {
	if e.Kind == KindTimeout {
		return fmt.Sprintf("%s timeout: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// Prober fetches the certificate state of a single domain.
// Probe never fails: failures are described by the returned record.
type Prober interface {
	Probe(ctx context.Context, domain string) entities.DomainRecord
}

// TLSProber connects to domain:Port and inspects the leaf certificate
// presented during a verified TLS handshake.
type TLSProber struct {
	Port             int
	ConnectTimeout   time.Duration
	HandshakeTimeout time.Duration
	// RootCAs overrides the system trust store when set.
	RootCAs *x509.CertPool
	Clock   clockwork.Clock
}

// Probe implements Prober.
func (p TLSProber) Probe(ctx context.Context, domain string) entities.DomainRecord {
	now := p.Clock.Now().UTC()

	cert, err := p.leafCertificate(ctx, domain)
	if err != nil {
		return entities.DomainRecord{
			Status:       entities.StatusOffline,
			HasSSL:       false,
			ErrorMessage: err.Error(),
			LastCheck:    now,
		}
	}

	return entities.DomainRecord{
		Status:        entities.StatusOnline,
		HasSSL:        true,
		CommonName:    cert.Subject.CommonName,
		ValidFrom:     cert.NotBefore.UTC(),
		ValidUntil:    cert.NotAfter.UTC(),
		DaysRemaining: entities.IntPtr(DaysUntil(now, cert.NotAfter)),
		LastCheck:     now,
	}
}

func (p TLSProber) leafCertificate(ctx context.Context, domain string) (*x509.Certificate, error) {
	addr := net.JoinHostPort(domain, strconv.Itoa(p.Port))

	dialer := &net.Dialer{Timeout: p.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, classify("connect", err)
	}
	defer conn.Close() //nolint:errcheck

	hsCtx, cancel := context.WithTimeout(ctx, p.HandshakeTimeout)
	defer cancel()

	tlsConn := tls.Client(conn, &tls.Config{
		ServerName: domain,
		RootCAs:    p.RootCAs,
		MinVersion: tls.VersionTLS12,
	})
	if err := tlsConn.HandshakeContext(hsCtx); err != nil {
		return nil, classify("handshake", err)
	}

	certs := tlsConn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return nil, &ProbeError{Kind: KindTLS, Stage: "handshake", Err: errNoPeerCertificate}
	}

	return certs[0], nil
}

var errNoPeerCertificate = errors.New("server presented no certificate")

// classify maps a dial or handshake error to a ProbeError.
func classify(stage string, err error) *ProbeError {
	if isTimeout(err) {
		return &ProbeError{Kind: KindTimeout, Stage: stage, Err: err}
	}
	if stage == "connect" {
		return &ProbeError{Kind: KindNetwork, Stage: stage, Err: err}
	}

	var (
		opErr  *net.OpError
		recErr tls.RecordHeaderError
	)
	if errors.As(err, &recErr) || !errors.As(err, &opErr) {
		return &ProbeError{Kind: KindTLS, Stage: stage, Err: err}
	}
	return &ProbeError{Kind: KindNetwork, Stage: stage, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// DaysUntil returns whole days from now until t, rounded down, so a
// certificate that expired an hour ago has -1 days remaining.
func DaysUntil(now, t time.Time) int {
	d := t.Sub(now)
	days := int(d / day)
	if d < 0 && d%day != 0 {
		days--
	}
	return days
}
