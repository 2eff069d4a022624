package domain

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// ErrInvalidDomain is returned for names that cannot be monitored.
var ErrInvalidDomain = errors.New("invalid domain name")

// NormalizeName turns user input into the host name used as table key.
// Schemes, paths, ports and a trailing dot are stripped, the name is
// lowercased and converted to its ASCII (punycode) form.
func NormalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if strings.Contains(name, "://") {
		u, err := url.Parse(name)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidDomain, raw)
		}
		name = u.Host
	}
	if i := strings.IndexAny(name, "/?#"); i >= 0 {
		name = name[:i]
	}
	if host, _, err := net.SplitHostPort(name); err == nil {
		name = host
	}
	name = strings.TrimSuffix(strings.ToLower(name), ".")
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidDomain, raw)
	}

	if ip := net.ParseIP(name); ip != nil {
		return ip.String(), nil
	}

	ascii, err := idna.Lookup.ToASCII(name)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidDomain, raw, err) //nolint:errorlint
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(ascii); err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidDomain, raw, err) //nolint:errorlint
	}

	return ascii, nil
}
