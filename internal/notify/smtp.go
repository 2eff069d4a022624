package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/entities"
)

var (
	alertTemplate = template.Must(template.New("alert").Parse(`<h2>SSL certificate expiry alert</h2>
<p>The SSL certificate of <strong>{{.Domain}}</strong> expires in {{.Days}} days.</p>
<p>Renew it as soon as possible to avoid service disruption.</p>
`))

	summaryTemplate = template.Must(template.New("summary").Parse(`<h2>Daily SSL certificate report</h2>
<p>Date: {{.Date}}</p>
<h3>Summary</h3>
<ul>
<li>Monitored domains: {{.Total}}</li>
<li>Domains with valid SSL: {{.WithSSL}}</li>
<li>Expiring within {{.Horizon}} days: {{len .Expiring}}</li>
</ul>
<h3>Expiring domains</h3>
<ul>
{{range .Expiring}}<li>{{.Name}}: {{.Days}} days remaining</li>
{{end}}</ul>
`))
)

// SMTPConfig describes an e-mail transport.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	Timeout  time.Duration
}

// SMTP delivers alerts as HTML e-mails. STARTTLS is used whenever
// the server offers it.
type SMTP struct {
	conf   SMTPConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewSMTP returns SMTP transport for conf.
func NewSMTP(logger *zap.Logger, conf SMTPConfig) *SMTP {
	return &SMTP{
		conf:   conf,
		logger: logger,
		now:    time.Now,
	}
}

// SendExpiryAlert implements Notifier.
func (s *SMTP) SendExpiryAlert(ctx context.Context, domain string, days int) error {
	var body bytes.Buffer
	if err := alertTemplate.Execute(&body, struct {
		Domain string
		Days   int
	}{domain, days}); err != nil {
		return fmt.Errorf("failed to render alert: %w", err)
	}

	return s.send(ctx, alertSubject(domain, days), body.String())
}

// SendSummaryReport implements Notifier.
func (s *SMTP) SendSummaryReport(ctx context.Context, domains entities.Domains) error {
	var body bytes.Buffer
	if err := summaryTemplate.Execute(&body, struct {
		Summary
		Date    string
		Horizon int
	}{Summarize(domains), s.now().Format("02/01/2006 15:04"), ExpiringWithin}); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}

	return s.send(ctx, "Daily SSL certificate report", body.String())
}

func (s *SMTP) send(ctx context.Context, subject, html string) error {
	ctx, cancel := context.WithTimeout(ctx, s.conf.Timeout)
	defer cancel()

	addr := net.JoinHostPort(s.conf.Host, strconv.Itoa(s.conf.Port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	defer conn.Close() //nolint:errcheck

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("failed to set deadline: %w", err)
		}
	}

	c, err := smtp.NewClient(conn, s.conf.Host)
	if err != nil {
		return fmt.Errorf("failed to start smtp session: %w", err)
	}
	defer c.Close() //nolint:errcheck

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.conf.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("failed to start tls: %w", err)
		}
	}
	if s.conf.Username != "" {
		auth := smtp.PlainAuth("", s.conf.Username, s.conf.Password, s.conf.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := c.Mail(s.conf.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range s.conf.To {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to add recipient %q: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("failed to start data: %w", err)
	}
	if _, err := w.Write(s.message(subject, html)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	if err := c.Quit(); err != nil {
		s.logger.Debug("smtp quit failed", zap.Error(err))
	}

	s.logger.Info("e-mail delivered", zap.String("subject", subject), zap.Strings("to", s.conf.To))
	return nil
}

func (s *SMTP) message(subject, html string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", s.conf.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(s.conf.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", s.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(html, "\n", "\r\n"))
	return b.Bytes()
}
