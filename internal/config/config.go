package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // alert timezone must load on hosts without zoneinfo

	"github.com/jessevdk/go-flags"

	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/environment"
)

// Storage drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

type (
	// AppConfig contains full configuration of the service.
	AppConfig struct {
		Env     environment.Env `long:"env" env:"ENV" description:"Environment application is running in" default:"local"`
		Domains []string        `long:"domain" env:"DOMAINS" env-delim:"," description:"Domain to monitor in addition to the persisted ones, may be repeated"` //nolint:lll

		Logger   Logger   `group:"Logger options" namespace:"logger" env-namespace:"LOGGER"`
		HTTP     Server   `group:"HTTP server options" namespace:"http" env-namespace:"HTTP"`
		Storage  Storage  `group:"Storage options" namespace:"storage" env-namespace:"STORAGE"`
		Postgres Postgres `group:"PostgreSQL option" namespace:"postgres" env-namespace:"POSTGRES"`
		Probe    Probe    `group:"Probe options" namespace:"probe" env-namespace:"PROBE"`
		Refresh  Refresh  `group:"Refresh options" namespace:"refresh" env-namespace:"REFRESH"`
		Alerts   Alerts   `group:"Alert options" namespace:"alerts" env-namespace:"ALERTS"`
		SMTP     SMTP     `group:"SMTP options" namespace:"smtp" env-namespace:"SMTP"`
		Webhook  Webhook  `group:"Webhook options" namespace:"webhook" env-namespace:"WEBHOOK"`
	}

	// Logger contains logger configuration.
	Logger struct {
		Level string `long:"level" env:"LEVEL" description:"Log level to use; environment-base level is used when empty"`
	}

	// Server contains server configuration, regardless
	// of the server type http.
	Server struct {
		Host string `long:"host" env:"HOST" description:"Host to listen on, default is empty (all interfaces)"`
		Port int    `long:"port" env:"PORT" description:"Port to listen on" default:"5000"`
	}

	// Storage selects where the domain table is persisted.
	Storage struct {
		Driver string `long:"driver" env:"DRIVER" description:"Storage driver" choice:"file" choice:"postgres" default:"file"` //nolint:lll,staticcheck
		Path   string `long:"path" env:"PATH" description:"Path of the JSON file used by the file driver" default:"data.json"`
	}

	// Postgres contains postgres configuration.
	Postgres struct {
		MainDBConnectionString string        `long:"maindb_connection_string" env:"MAINDB_CONNECTION_STRING" description:"PGX connection string to the maindDB"` //nolint:lll
		Timeout                time.Duration `long:"timeout" env:"TIMEOUT" description:"Timeout for queries" default:"1s"`
	}

	// Probe contains certificate probe configuration.
	Probe struct {
		Port             int           `long:"port" env:"PORT" description:"TLS port to probe" default:"443"`
		ConnectTimeout   time.Duration `long:"connect_timeout" env:"CONNECT_TIMEOUT" description:"TCP connect timeout" default:"5s"`
		HandshakeTimeout time.Duration `long:"handshake_timeout" env:"HANDSHAKE_TIMEOUT" description:"TLS handshake timeout" default:"5s"`
	}

	// Refresh contains refresh cycle configuration.
	Refresh struct {
		Interval    time.Duration `long:"interval" env:"INTERVAL" description:"Time between refresh cycles" default:"180s"`
		Poll        time.Duration `long:"poll" env:"POLL" description:"How often the refresh interval is checked" default:"30s"`
		Workers     int           `long:"workers" env:"WORKERS" description:"Probes in flight at most" default:"10"`
		TaskTimeout time.Duration `long:"task_timeout" env:"TASK_TIMEOUT" description:"Completion timeout of a single probe task" default:"10s"`
		CacheTTL    time.Duration `long:"cache_ttl" env:"CACHE_TTL" description:"Freshness window of cached probe results" default:"300s"`
	}

	// Alerts contains daily alert scan configuration.
	Alerts struct {
		Thresholds []int         `long:"threshold" env:"THRESHOLDS" env-delim:"," description:"Days remaining that trigger an alert" default:"10" default:"5" default:"4" default:"3" default:"2" default:"1"` //nolint:lll,staticcheck
		Timezone   string        `long:"timezone" env:"TIMEZONE" description:"Timezone of the daily scan" default:"America/Bogota"`
		At         string        `long:"at" env:"AT" description:"Local time of the daily scan, HH:MM" default:"09:00"`
		Window     time.Duration `long:"window" env:"WINDOW" description:"How late after the scan time a delayed poll still fires" default:"1h"`
		Poll       time.Duration `long:"poll" env:"POLL" description:"How often the daily scan time is checked" default:"180s"`
		Summary    bool          `long:"summary" env:"SUMMARY" description:"Send a daily summary report after the scan"`
	}

	// SMTP contains e-mail transport configuration.
	SMTP struct {
		Host     string        `long:"host" env:"HOST" description:"SMTP server host, e-mail alerts are disabled when empty"`
		Port     int           `long:"port" env:"PORT" description:"SMTP server port" default:"587"`
		Username string        `long:"username" env:"USERNAME" description:"SMTP username"`
		Password string        `long:"password" env:"PASSWORD" description:"SMTP password"`
		From     string        `long:"from" env:"FROM" description:"Sender address"`
		To       []string      `long:"to" env:"TO" env-delim:"," description:"Recipient address, may be repeated"`
		Timeout  time.Duration `long:"timeout" env:"TIMEOUT" description:"Timeout of a single delivery" default:"30s"`
	}

	// Webhook contains chat webhook transport configuration.
	Webhook struct {
		URL     string        `long:"url" env:"URL" description:"Webhook URL, webhook alerts are disabled when empty"`
		Timeout time.Duration `long:"timeout" env:"TIMEOUT" description:"Timeout of a single delivery" default:"10s"`
	}
)

var (
	// ErrHelp is returned when --help flag is
	// used and application should not launch.
	ErrHelp = errors.New("help")

	errNoConnString = errors.New("postgres connection string is required by the postgres storage driver")
	errBadAt        = errors.New("alert time must be formatted as HH:MM")
)

// New reads flags and envs and returns AppConfig
// that corresponds to the values read.
func New() (*AppConfig, error) {
	return parse(os.Args[1:])
}

func parse(args []string) (*AppConfig, error) {
	var config AppConfig
	if _, err := flags.NewParser(&config, flags.Default).ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, ErrHelp
		}
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *AppConfig) validate() error {
	if c.Storage.Driver == DriverPostgres && c.Postgres.MainDBConnectionString == "" {
		return errNoConnString
	}
	if _, _, err := c.Alerts.Clock(); err != nil {
		return err
	}
	if _, err := c.Alerts.Location(); err != nil {
		return err
	}
	return nil
}

// Clock returns hour and minute of the daily scan.
func (a Alerts) Clock() (int, int, error) {
	t, err := time.Parse("15:04", a.At)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", errBadAt, a.At)
	}
	return t.Hour(), t.Minute(), nil
}

// Location loads the timezone of the daily scan.
func (a Alerts) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", a.Timezone, err)
	}
	return loc, nil
}
